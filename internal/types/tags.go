package types

// Tag is the discriminant naming a node's behavior.
type Tag string

// Family groups tags by node variant.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyComparator
	FamilyLogical
	FamilyOperator
	FamilyInjector
)

// Comparator tags.
const (
	TagIsInteger         Tag = "IsInteger"
	TagIsNumber          Tag = "IsNumber"
	TagIsRealNumber      Tag = "IsRealNumber"
	TagIsPrecisionNumber Tag = "IsPrecisionNumber"
	TagIsString          Tag = "IsString"
	TagIsBoolean         Tag = "IsBoolean"
	TagIsDate            Tag = "IsDate"
	TagIsEmpty           Tag = "IsEmpty"
	TagIsNotEmpty        Tag = "IsNotEmpty"
	TagIsTrue            Tag = "IsTrue"
	TagIsFalse           Tag = "IsFalse"
	TagIsEqualTo         Tag = "IsEqualTo"
	TagIsUnequalTo       Tag = "IsUnequalTo"
	TagIsMoreThan        Tag = "IsMoreThan"
	TagIsLessThan        Tag = "IsLessThan"
	TagIsNoMoreThan      Tag = "IsNoMoreThan"
	TagIsNoLessThan      Tag = "IsNoLessThan"
	TagIsBefore          Tag = "IsBefore"
	TagIsAfter           Tag = "IsAfter"
	TagIsMember          Tag = "IsMember"
	TagIsNotMember       Tag = "IsNotMember"
	TagStartsWith        Tag = "StartsWith"
	TagEndsWith          Tag = "EndsWith"
	TagIsLength          Tag = "IsLength"
	TagIsLongerThan      Tag = "IsLongerThan"
	TagIsShorterThan     Tag = "IsShorterThan"
	TagMatches           Tag = "Matches"
	TagDoesNotMatch      Tag = "DoesNotMatch"
)

// Logical tags.
const (
	TagAnd Tag = "And"
	TagOr  Tag = "Or"
	TagNot Tag = "Not"
)

// Operator tags.
const (
	TagAdd            Tag = "Add"
	TagSubtract       Tag = "Subtract"
	TagMultiply       Tag = "Multiply"
	TagDivide         Tag = "Divide"
	TagRemainder      Tag = "Remainder"
	TagPower          Tag = "Power"
	TagNegate         Tag = "Negate"
	TagAbsoluteValue  Tag = "AbsoluteValue"
	TagMin            Tag = "Min"
	TagMax            Tag = "Max"
	TagAverage        Tag = "Average"
	TagRound          Tag = "Round"
	TagFloor          Tag = "Floor"
	TagCeiling        Tag = "Ceiling"
	TagTruncate       Tag = "Truncate"
	TagConcatenate    Tag = "Concatenate"
	TagTemplate       Tag = "Template"
	TagUppercase      Tag = "Uppercase"
	TagLowercase      Tag = "Lowercase"
	TagTrim           Tag = "Trim"
	TagReplace        Tag = "Replace"
	TagLength         Tag = "Length"
	TagFormatNumber   Tag = "FormatNumber"
	TagFormatPercent  Tag = "FormatPercent"
	TagFormatCurrency Tag = "FormatCurrency"
	TagFormatDate     Tag = "FormatDate"
)

// Injector tags.
const (
	TagConstant        Tag = "Constant"
	TagFromArgument    Tag = "FromArgument"
	TagFromLocalValues Tag = "FromLocalValues"
)

var families = map[Tag]Family{
	TagIsInteger:         FamilyComparator,
	TagIsNumber:          FamilyComparator,
	TagIsRealNumber:      FamilyComparator,
	TagIsPrecisionNumber: FamilyComparator,
	TagIsString:          FamilyComparator,
	TagIsBoolean:         FamilyComparator,
	TagIsDate:            FamilyComparator,
	TagIsEmpty:           FamilyComparator,
	TagIsNotEmpty:        FamilyComparator,
	TagIsTrue:            FamilyComparator,
	TagIsFalse:           FamilyComparator,
	TagIsEqualTo:         FamilyComparator,
	TagIsUnequalTo:       FamilyComparator,
	TagIsMoreThan:        FamilyComparator,
	TagIsLessThan:        FamilyComparator,
	TagIsNoMoreThan:      FamilyComparator,
	TagIsNoLessThan:      FamilyComparator,
	TagIsBefore:          FamilyComparator,
	TagIsAfter:           FamilyComparator,
	TagIsMember:          FamilyComparator,
	TagIsNotMember:       FamilyComparator,
	TagStartsWith:        FamilyComparator,
	TagEndsWith:          FamilyComparator,
	TagIsLength:          FamilyComparator,
	TagIsLongerThan:      FamilyComparator,
	TagIsShorterThan:     FamilyComparator,
	TagMatches:           FamilyComparator,
	TagDoesNotMatch:      FamilyComparator,

	TagAnd: FamilyLogical,
	TagOr:  FamilyLogical,
	TagNot: FamilyLogical,

	TagAdd:            FamilyOperator,
	TagSubtract:       FamilyOperator,
	TagMultiply:       FamilyOperator,
	TagDivide:         FamilyOperator,
	TagRemainder:      FamilyOperator,
	TagPower:          FamilyOperator,
	TagNegate:         FamilyOperator,
	TagAbsoluteValue:  FamilyOperator,
	TagMin:            FamilyOperator,
	TagMax:            FamilyOperator,
	TagAverage:        FamilyOperator,
	TagRound:          FamilyOperator,
	TagFloor:          FamilyOperator,
	TagCeiling:        FamilyOperator,
	TagTruncate:       FamilyOperator,
	TagConcatenate:    FamilyOperator,
	TagTemplate:       FamilyOperator,
	TagUppercase:      FamilyOperator,
	TagLowercase:      FamilyOperator,
	TagTrim:           FamilyOperator,
	TagReplace:        FamilyOperator,
	TagLength:         FamilyOperator,
	TagFormatNumber:   FamilyOperator,
	TagFormatPercent:  FamilyOperator,
	TagFormatCurrency: FamilyOperator,
	TagFormatDate:     FamilyOperator,

	TagConstant:        FamilyInjector,
	TagFromArgument:    FamilyInjector,
	TagFromLocalValues: FamilyInjector,
}

// FamilyOf returns the node variant for a built-in tag, or FamilyUnknown.
func FamilyOf(tag Tag) Family {
	return families[tag]
}

// Known reports whether tag belongs to the built-in vocabulary.
func (t Tag) Known() bool {
	return families[t] != FamilyUnknown
}

func (t Tag) String() string {
	return string(t)
}

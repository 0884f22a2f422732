// internal/engine/format.go
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v2"
	"github.com/goodsign/monday"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Locale-aware output formatting.
 *
 * Numbers, percentages and currency amounts stay decimal end to end: they
 * are rounded with apd and written with the digits and separators the x/text
 * printer uses for the node's locale (or the engine default). Without
 * decimal places trailing fraction zeros are dropped, except for currency
 * amounts, which use the currency's standard scale. Dates go through monday, which
 * translates month and weekday names in Go reference layouts.
 *
 * Date layouts may be a Go layout string or one of the named styles short,
 * medium, long and full, resolved per locale.
 */

const defaultDateStyle = "long"

// format evaluates the formatting operators.
func (e *Engine) format(node *types.Operator, args []types.Value) types.Either {
	if failed, ok := expectArgs(node, args, 1); !ok {
		return failed
	}
	tag := string(node.Tag)
	value := args[0]

	lang, failed := e.language(node)
	if failed.IsLeft() {
		return failed
	}

	if node.Tag == types.TagFormatDate {
		t, err := toTime(value)
		if err != nil {
			return fail(node, tag, fmt.Sprintf("%s is not a date.", types.FormatValue(value)))
		}
		locale := mondayLocale(lang)
		return types.Right(monday.Format(t, dateLayout(node.Layout, locale), locale))
	}

	d, err := toDecimal(value)
	if err != nil {
		return fail(node, tag, fmt.Sprintf("%s is not a number.", types.FormatValue(value)))
	}
	places := -1
	if node.DecimalPlaces != nil {
		places = *node.DecimalPlaces
		if failed := checkPlaces(node, places); failed.IsLeft() {
			return failed
		}
	}
	nums := e.numerals(lang)

	switch node.Tag {
	case types.TagFormatNumber:
		text, failed := scaled(node, d, places)
		if failed.IsLeft() {
			return failed
		}
		return types.Right(nums.decimal(text))
	case types.TagFormatPercent:
		pct := new(apd.Decimal)
		if _, err := apdCtx.Mul(pct, d, apd.New(100, 0)); err != nil {
			return fail(node, tag, fmt.Sprintf("cannot compute result: %v.", err))
		}
		text, failed := scaled(node, pct, places)
		if failed.IsLeft() {
			return failed
		}
		return types.Right(nums.percent(text))
	case types.TagFormatCurrency:
		unit, err := currency.ParseISO(node.Currency)
		if err != nil {
			return configFail(node, tag, fmt.Sprintf("%q is not a currency code.", node.Currency))
		}
		if places < 0 {
			places, _ = currency.Standard.Rounding(unit)
		}
		text, failed := scaled(node, d, places)
		if failed.IsLeft() {
			return failed
		}
		return types.Right(nums.printer.Sprint(currency.Symbol(unit)) + " " + nums.decimal(text))
	}
	return unknownTag(node, node.Tag)
}

// scaled renders d in plain notation, rounded half up to places when
// places >= 0 and with trailing fraction zeros dropped otherwise.
func scaled(node *types.Operator, d *apd.Decimal, places int) (string, types.Either) {
	out := new(apd.Decimal)
	if places >= 0 {
		if _, err := apdCtx.Quantize(out, d, int32(-places)); err != nil {
			return "", fail(node, string(node.Tag), fmt.Sprintf("cannot round %s: %v.", d.Text('f'), err))
		}
	} else {
		out.Reduce(d)
	}
	return fromDecimal(out).String(), types.Right(nil)
}

// numerals holds the symbols a locale uses to write decimal numbers.
// Integer parts that fit an int64 go through the x/text printer so locale
// grouping rules apply; longer ones are grouped in threes.
type numerals struct {
	printer   *message.Printer
	digits    [10]string
	minus     string
	group     string
	separator string
	pctPrefix string
	pctSuffix string
}

// numerals returns the cached numerals for lang.
func (e *Engine) numerals(lang language.Tag) *numerals {
	key := lang.String()
	if n, ok := e.locales.Load(key); ok {
		return n.(*numerals)
	}
	n := newNumerals(lang)
	e.locales.Store(key, n)
	return n
}

func newNumerals(lang language.Tag) *numerals {
	p := message.NewPrinter(lang)
	n := &numerals{printer: p}
	for i := range n.digits {
		n.digits[i] = p.Sprint(number.Decimal(i))
	}
	one, zero, five := n.digits[1], n.digits[0], n.digits[5]

	n.minus = strings.TrimSuffix(p.Sprint(number.Decimal(-1)), one)

	million := strings.TrimPrefix(p.Sprint(number.Decimal(1000000)), one)
	if i := strings.Index(million, zero); i > 0 {
		n.group = million[:i]
	}

	half := p.Sprint(number.Decimal(1.5, number.MinFractionDigits(1)))
	n.separator = strings.TrimSuffix(strings.TrimPrefix(half, one), five)

	pct := p.Sprint(number.Percent(0.5))
	if i := strings.Index(pct, five+zero); i >= 0 {
		n.pctPrefix, n.pctSuffix = pct[:i], pct[i+len(five+zero):]
	} else {
		n.pctSuffix = "%"
	}
	return n
}

// decimal writes plain decimal text such as "-1234.50" in the locale.
func (n *numerals) decimal(text string) string {
	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	whole, frac, _ := strings.Cut(text, ".")

	var b strings.Builder
	if negative {
		b.WriteString(n.minus)
	}
	if i, err := strconv.ParseInt(whole, 10, 64); err == nil {
		b.WriteString(n.printer.Sprint(number.Decimal(i)))
	} else {
		for i, r := range whole {
			if i > 0 && (len(whole)-i)%3 == 0 {
				b.WriteString(n.group)
			}
			b.WriteString(n.digits[r-'0'])
		}
	}
	if frac != "" {
		b.WriteString(n.separator)
		for _, r := range frac {
			b.WriteString(n.digits[r-'0'])
		}
	}
	return b.String()
}

// percent writes text, already scaled by 100, with the locale percent pattern.
func (n *numerals) percent(text string) string {
	if strings.HasPrefix(text, "-") {
		return n.minus + n.pctPrefix + n.decimal(strings.TrimPrefix(text, "-")) + n.pctSuffix
	}
	return n.pctPrefix + n.decimal(text) + n.pctSuffix
}

// language resolves the node locale, falling back to the engine default.
func (e *Engine) language(node *types.Operator) (language.Tag, types.Either) {
	locale := node.Locale
	if locale == "" {
		locale = e.locale
	}
	lang, err := language.Parse(locale)
	if err != nil {
		return language.Und, configFail(node, string(node.Tag), fmt.Sprintf("%q is not a valid locale.", locale))
	}
	return lang, types.Right(nil)
}

// mondayLocales maps base language and region to monday locales.
var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"sv":    monday.LocaleSvSE,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
}

// mondayLocale maps a language tag to a monday locale, defaulting to en_US.
func mondayLocale(lang language.Tag) monday.Locale {
	base, _ := lang.Base()
	region, _ := lang.Region()
	key := strings.ToLower(base.String() + "_" + region.String())
	if loc, ok := mondayLocales[key]; ok {
		return loc
	}
	if loc, ok := mondayLocales[strings.ToLower(base.String())]; ok {
		return loc
	}
	return monday.LocaleEnUS
}

// dateStyles holds named layouts per locale; en_US is the fallback.
var dateStyles = map[monday.Locale]map[string]string{
	monday.LocaleEnUS: {"short": "1/2/06", "medium": "Jan 2, 2006", "long": "January 2, 2006", "full": "Monday, January 2, 2006"},
	monday.LocaleEnGB: {"short": "02/01/2006", "medium": "2 Jan 2006", "long": "2 January 2006", "full": "Monday, 2 January 2006"},
	monday.LocaleDeDE: {"short": "02.01.06", "medium": "02.01.2006", "long": "2. January 2006", "full": "Monday, 2. January 2006"},
	monday.LocaleFrFR: {"short": "02/01/2006", "medium": "2 Jan 2006", "long": "2 January 2006", "full": "Monday 2 January 2006"},
	monday.LocaleEsES: {"short": "02/01/06", "medium": "2 Jan 2006", "long": "2 de January de 2006", "full": "Monday, 2 de January de 2006"},
	monday.LocaleJaJP: {"short": "2006/01/02", "medium": "2006/01/02", "long": "2006年1月2日", "full": "2006年1月2日 Monday"},
}

// dateLayout resolves a named style or returns layout unchanged.
func dateLayout(layout string, locale monday.Locale) string {
	if layout == "" {
		layout = defaultDateStyle
	}
	styles, ok := dateStyles[locale]
	if !ok {
		styles = dateStyles[monday.LocaleEnUS]
	}
	if named, ok := styles[layout]; ok {
		return named
	}
	return layout
}

// Package api provides the gRPC evaluation service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/site-bender/sitebender-sub007/internal/core/auth"
	"github.com/site-bender/sitebender-sub007/internal/core/config"
	"github.com/site-bender/sitebender-sub007/internal/core/db"
	"github.com/site-bender/sitebender-sub007/internal/engine"
	"github.com/site-bender/sitebender-sub007/internal/types"
)

// OperandStore is the persistence the service needs. Implemented by *db.Store.
type OperandStore interface {
	GetOperand(ctx context.Context, element string, property types.Property) (*db.OperandRecord, error)
	PutOperand(ctx context.Context, element string, property types.Property, tree types.Operand, tags []types.Tag, cost int) (*db.OperandRecord, error)
	RecordEvaluation(ctx context.Context, operandID types.OperandID, element string, property types.Property, clientID string, result types.Either, duration time.Duration) (types.EvaluationID, error)
}

// EvaluationService implements EvaluationServer.
// Thin orchestration layer delegating to the engine and the operand store.
type EvaluationService struct {
	engine  *engine.Engine
	store   OperandStore
	cfg     *config.ServiceConfig
	logger  *slog.Logger
	metrics *evaluationMetrics
}

// NewEvaluationService creates service instance with dependencies.
// store may be nil, which disables stored operands and the evaluation log.
func NewEvaluationService(eng *engine.Engine, store OperandStore, cfg *config.ServiceConfig, logger *slog.Logger) (*EvaluationService, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationService{
		engine:  eng,
		store:   store,
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(logger),
	}, nil
}

// target is the tree a request evaluates.
type target struct {
	compiled *engine.CompiledOperand
	id       types.OperandID
	element  string
	property types.Property
	source   string // "inline" or "stored"
}

// Evaluate evaluates an inline tree ("operand") or the tree stored for
// "element"/"property" against "argument" and "locals".
// Evaluation failures are returned in the result, never as gRPC errors.
func (s *EvaluationService) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.resolve(ctx, req)
	if err != nil {
		return nil, statusError(err)
	}

	arg, _, err := valueField(req, "argument")
	if err != nil {
		return nil, statusError(err)
	}
	locals, err := localsField(req)
	if err != nil {
		return nil, statusError(err)
	}

	start := time.Now()
	result := s.engine.Evaluate(t.compiled.Root, arg, locals)
	elapsed := time.Since(start)

	s.metrics.record(ctx, t.source, result.IsRight(), len(result.Errors()), elapsed)

	resp := map[string]any{
		"ok":     result.IsRight(),
		"result": result,
	}

	if s.cfg.RecordEvaluations && s.store != nil {
		clientID := auth.ClientIDFromContext(ctx)
		id, err := s.store.RecordEvaluation(ctx, t.id, t.element, t.property, clientID, result, elapsed)
		if err != nil {
			// The result is still valid; the log is best-effort
			s.logger.Warn("failed to record evaluation", "element", t.element, "property", t.property, "error", err)
		} else {
			resp["evaluation_id"] = string(id)
		}
	}

	return toStruct(resp)
}

// Validate compiles "operand" and reports its tags, depth and cost.
func (s *EvaluationService) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	op, err := operandField(req)
	if err != nil {
		return nil, statusError(err)
	}
	compiled, err := s.engine.Compile(op)
	if err != nil {
		return nil, statusError(err)
	}
	return toStruct(compiledSummary(compiled))
}

// PutOperand compiles "operand" and stores it for "element"/"property".
func (s *EvaluationService) PutOperand(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "no operand store configured")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	element, property, err := elementField(req)
	if err != nil {
		return nil, statusError(err)
	}
	op, err := operandField(req)
	if err != nil {
		return nil, statusError(err)
	}
	compiled, err := s.engine.Compile(op)
	if err != nil {
		return nil, statusError(err)
	}

	rec, err := s.store.PutOperand(ctx, element, property, compiled.Root, compiled.Tags, compiled.Cost)
	if err != nil {
		return nil, statusError(err)
	}

	s.logger.Info("operand stored",
		"operand_id", rec.ID,
		"element", element,
		"property", property,
		"client_id", auth.ClientIDFromContext(ctx),
		"cost", compiled.Cost,
	)

	resp := compiledSummary(compiled)
	resp["operand_id"] = string(rec.ID)
	resp["element"] = rec.Element
	resp["property"] = string(rec.Property)
	return toStruct(resp)
}

func (s *EvaluationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

// resolve picks the inline tree if present, otherwise the stored one.
func (s *EvaluationService) resolve(ctx context.Context, req *structpb.Struct) (*target, error) {
	if _, ok := req.GetFields()["operand"]; ok {
		op, err := operandField(req)
		if err != nil {
			return nil, err
		}
		compiled, err := s.engine.Compile(op)
		if err != nil {
			return nil, err
		}
		element := stringField(req, "element")
		property := types.Property(stringField(req, "property"))
		return &target{compiled: compiled, element: element, property: property, source: "inline"}, nil
	}

	if s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "no operand store configured; send an inline operand")
	}
	element, property, err := elementField(req)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.GetOperand(ctx, element, property)
	if err != nil {
		return nil, err
	}
	op, err := rec.Operand()
	if err != nil {
		return nil, fmt.Errorf("stored operand %s is corrupt: %w", rec.ID, err)
	}
	compiled, err := s.engine.Compile(op)
	if err != nil {
		return nil, fmt.Errorf("stored operand %s no longer compiles: %w", rec.ID, err)
	}
	return &target{compiled: compiled, id: rec.ID, element: element, property: property, source: "stored"}, nil
}

func compiledSummary(c *engine.CompiledOperand) map[string]any {
	tags := make([]any, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = string(t)
	}
	return map[string]any{
		"valid": true,
		"tags":  tags,
		"depth": c.Depth,
		"cost":  c.Cost,
	}
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func elementField(req *structpb.Struct) (string, types.Property, error) {
	element := stringField(req, "element")
	if element == "" {
		return "", "", fmt.Errorf("%w: element is required", types.ErrInvalidParameter)
	}
	property, err := types.ParseProperty(stringField(req, "property"))
	if err != nil {
		return "", "", err
	}
	return element, property, nil
}

// valueField re-encodes a Struct field as JSON and decodes it as a Value,
// keeping numbers in json.Number form.
func valueField(req *structpb.Struct, key string) (types.Value, bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, false, nil
	}
	data, err := protojson.Marshal(v)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", types.ErrInvalidParameter, key, err)
	}
	val, err := types.DecodeValue(data)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", types.ErrInvalidParameter, key, err)
	}
	return val, true, nil
}

func operandField(req *structpb.Struct) (types.Operand, error) {
	raw, ok, err := valueField(req, "operand")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: operand is required", types.ErrInvalidOperand)
	}
	return types.ParseOperand(raw)
}

func localsField(req *structpb.Struct) (types.LocalValues, error) {
	raw, ok, err := valueField(req, "locals")
	if err != nil || !ok || raw == nil {
		return types.LocalValues{}, err
	}
	obj, isObj := raw.(map[string]any)
	if !isObj {
		return nil, fmt.Errorf("%w: locals must be an object", types.ErrInvalidParameter)
	}
	return types.LocalValues(obj), nil
}

// toStruct converts a JSON-encodable response into a Struct.
func toStruct(v map[string]any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return out, nil
}

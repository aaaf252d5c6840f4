package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// RequestSink stores validated hospital requests.
type RequestSink interface {
	InsertRequest(ctx context.Context, req *model.HospitalRequest) error
}

// Validate checks a hospital request before it is stored
func Validate(req *model.HospitalRequest) error {
	switch {
	case req.RequestCode == "" || req.BloodBankID == "" || req.HospitalCode == "":
		return fmt.Errorf("invalid request: missing requestCode, hospitalCode or bloodBankId")
	case !model.IsBloodGroup(req.BloodGroup):
		return fmt.Errorf("invalid request %s: unknown blood group %q", req.RequestCode, req.BloodGroup)
	case req.Units <= 0:
		return fmt.Errorf("invalid request %s: units must be positive", req.RequestCode)
	}
	switch req.Urgency {
	case model.UrgencyNormal, model.UrgencyUrgent, model.UrgencyEmergency:
	default:
		return fmt.Errorf("invalid request %s: unknown urgency %q", req.RequestCode, req.Urgency)
	}
	switch req.Status {
	case model.RequestPending, model.RequestFulfilled, model.RequestCancelled:
	default:
		return fmt.Errorf("invalid request %s: unknown status %q", req.RequestCode, req.Status)
	}
	return nil
}

// Normalize fills defaults and truncates timestamps to the stored precision
func Normalize(req *model.HospitalRequest, now time.Time) {
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	if req.Urgency == "" {
		req.Urgency = model.UrgencyNormal
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}
	req.CreatedAt = req.CreatedAt.UTC().Truncate(time.Millisecond)
	req.UpdatedAt = req.UpdatedAt.UTC().Truncate(time.Millisecond)
}

// HandleHospitalRequestCreated processes one hospital request event from Kafka.
func HandleHospitalRequestCreated(ctx context.Context, msg []byte, sink RequestSink, logger *zap.Logger) error {
	var event HospitalRequestCreatedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal HospitalRequestCreatedEvent: %w", err)
	}
	if event.EventType != "" && event.EventType != EventTypeRequestCreated {
		return fmt.Errorf("unexpected event type %q", event.EventType)
	}

	req := event.Request
	req.ID = ""
	Normalize(&req, time.Now())
	if err := Validate(&req); err != nil {
		return err
	}

	if err := sink.InsertRequest(ctx, &req); err != nil {
		return fmt.Errorf("internal service error: %w", err)
	}

	logger.Info("Stored hospital request",
		zap.String("request", req.RequestCode),
		zap.String("bloodBankId", req.BloodBankID),
		zap.String("urgency", req.Urgency))
	return nil
}

package bedrock

import (
	"errors"
	"testing"

	smithy "github.com/aws/smithy-go"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantPermanent bool
	}{
		{"throttling exception", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, false},
		{"service unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailableException", Message: "busy"}, false},
		{"model timeout", &smithy.GenericAPIError{Code: "ModelTimeoutException", Message: "timed out"}, false},
		{"model not ready", &smithy.GenericAPIError{Code: "ModelNotReadyException", Message: "warming up"}, false},
		{"internal server error", &smithy.GenericAPIError{Code: "InternalServerException", Message: "oops"}, false},
		{"validation exception", &smithy.GenericAPIError{Code: "ValidationException", Message: "bad request"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no creds"}, true},
		{"model not found", &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no such model"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)

			var provErr *agenterr.ProviderError
			if !errors.As(got, &provErr) {
				t.Fatalf("classifyError(%v) = %v, want *agenterr.ProviderError", tt.err, got)
			}
			if provErr.Provider != "bedrock" {
				t.Errorf("Provider = %q, want %q", provErr.Provider, "bedrock")
			}
			if provErr.Permanent != tt.wantPermanent {
				t.Errorf("Permanent = %v, want %v", provErr.Permanent, tt.wantPermanent)
			}
		})
	}
}

func TestClassifyError_NonAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	got := classifyError(cause)

	var provErr *agenterr.ProviderError
	if errors.As(got, &provErr) {
		t.Fatalf("classifyError(%v) = %v, want a plain wrapped error, not a ProviderError", cause, got)
	}
	if !errors.Is(got, cause) {
		t.Errorf("classifyError(%v) does not wrap the original error", cause)
	}
}

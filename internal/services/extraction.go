package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/taxonomy"
	"github.com/paytrackhq/sms-finance-backend/pkg/helpers"
	"github.com/paytrackhq/sms-finance-backend/pkg/logger"
)

// TextGenerator is the opaque text-generation capability. Any error is
// eligible for fallback to the next provider in the chain.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, systemInstruction, content string) (string, error)
}

type extractionService struct {
	providers []TextGenerator
	clockNow  func() time.Time
}

// NewExtractionService builds the orchestrator over an ordered provider
// chain; the first provider is primary, the rest are fallbacks.
func NewExtractionService(providers ...TextGenerator) *extractionService {
	return &extractionService{
		providers: providers,
		clockNow:  time.Now,
	}
}

// Extract turns a raw SMS payload into a draft transaction. It returns
// (nil, nil) when the text is not a completed transaction, and a
// ProviderFailureError only after every provider has failed. Providers
// are tried sequentially; there is no retry beyond the chain itself.
func (s *extractionService) Extract(ctx context.Context, payload dto.SMSPayload) (*dto.ExtractedTransaction, error) {
	log := logger.FromContext(ctx)

	system := extractionSystemPrompt()
	content := extractionContent(payload, s.clockNow().UTC())

	var draft *dto.ExtractedTransaction
	var failures []error
	for _, provider := range s.providers {
		text, err := provider.Generate(ctx, system, content)
		if err != nil {
			log.Warn("provider call failed", "provider", provider.Name(), "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		obj := SanitizeModelJSON(text)
		if obj == nil {
			log.Warn("unparsable provider output", "provider", provider.Name())
			failures = append(failures, fmt.Errorf("%s: unparsable model output", provider.Name()))
			continue
		}
		if len(obj) == 0 {
			// The model followed the instruction to return {} for
			// non-transaction messages.
			return nil, nil
		}

		candidate, err := decodeDraft(obj)
		if err != nil {
			log.Warn("model output does not match draft shape", "provider", provider.Name(), "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		log.Info("extraction succeeded", "provider", provider.Name())
		draft = candidate
		break
	}

	if draft == nil {
		return nil, errs.NewProviderFailureError(
			"all text-generation providers failed",
			errors.Join(failures...),
		)
	}

	if summaryIndicatesFailure(draft.Summary) {
		// Providers occasionally hallucinate well-formed records for
		// failed transfers; the summary text betrays them.
		return nil, nil
	}
	if !hasPlausibleAmount(draft) && !containsCurrencyMarker(payload.Message) {
		return nil, nil
	}

	return draft, nil
}

func decodeDraft(obj map[string]any) (*dto.ExtractedTransaction, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var out dto.ExtractedTransaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func hasPlausibleAmount(draft *dto.ExtractedTransaction) bool {
	return draft.Amount != nil && draft.Amount.IsPositive()
}

var currencyMarkers = []string{"rwf", "frw", "usd", "eur", "ugx", "$", "€", "£"}

func containsCurrencyMarker(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range currencyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Whole words only, so a counterparty whose name happens to contain
// the letters ("Failsafe Ltd") does not trip the downgrade.
var failureSummaryPattern = regexp.MustCompile(`(?i)\b(failed|failure|unsuccessful|declined|rejected)\b`)

func summaryIndicatesFailure(summary string) bool {
	return failureSummaryPattern.MatchString(summary)
}

func extractionSystemPrompt() string {
	return "You are a JSON extraction engine that extracts payment information from SMS messages. " +
		"You respond with a single JSON object and nothing else: no prose, no markdown fences."
}

func extractionContent(payload dto.SMSPayload, now time.Time) string {
	return "Extract the payment information from this SMS message.\n\n" +
		"message -> " + payload.Message + "\n" +
		"SMS sender -> " + payload.Sender + "\n" +
		"phone number -> " + helpers.Value(payload.PhoneNumber) + "\n\n" +
		"Return a JSON object with these fields:\n" +
		"- \"amount\": number, the transaction amount. Strip currency symbols; plain number only.\n" +
		"- \"fees\": number, the transaction fees. Use 0 when the message does not mention fees.\n" +
		"- \"type\": \"DEBIT\" when money leaves the account holder, \"CREDIT\" when money arrives.\n" +
		"- \"sender\": who the money came from. Use \"self\" when it originated from the account holder or is unknown.\n" +
		"- \"recipient\": who received the money. Use \"self\" when it stayed with the account holder or is unknown.\n" +
		"- \"category\": one of " + strings.Join(taxonomy.CategoryList, ", ") + ".\n" +
		"- \"label\": a short free-form tag for the counterparty, or null.\n" +
		"- \"paymentCode\": the payment or merchant code if present, or null.\n" +
		"- \"transactionReference\": the transaction reference or receipt number if present, or null.\n" +
		"- \"remainingBalance\": the balance after the transaction if stated, or null. Plain number only.\n" +
		"- \"summary\": one human-readable line built from the category and the parties.\n" +
		"- \"completedAt\": the transaction's own date in ISO 8601. Use " + now.Format(time.RFC3339) + " when the message has no date.\n\n" +
		"If the message is not a payment transaction, or describes a failed transaction, " +
		"return an empty JSON object {} instead of inventing values."
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/apexsim/apexsim-golang/internal/wpimport"
)

const callTimeout = 60 * time.Second

// retryDelays backs off between attempts: 1s, 2s, 4s, so a call gets four
// attempts in total before giving up.
var retryDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// Service holds the Gemini client used for variation-attribute inference.
// It implements wpimport.Inferrer.
type Service struct {
	client *genai.Client
	model  string
	log    *zap.Logger

	gen    func(ctx context.Context, prompt string) (string, error)
	delays []time.Duration
}

// NewService initializes the Gemini client. modelName falls back to
// gemini-1.5-flash when empty.
func NewService(ctx context.Context, apiKey, modelName string, log *zap.Logger) (*Service, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	s := &Service{client: client, model: modelName, log: log, delays: retryDelays}
	s.gen = s.generate
	return s, nil
}

// Close releases the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}

// InferVariationAttributes asks the model which declared option value each
// unresolved attribute takes for the given variation. Results are validated
// against the parent's declared value sets before being returned; anything
// the model invents is dropped. A nil map with a nil error means "no result"
// and the caller falls back to whatever the heuristics produced.
func (s *Service) InferVariationAttributes(ctx context.Context, req wpimport.InferenceRequest) (map[string]string, error) {
	if len(req.Attributes) == 0 {
		return nil, nil
	}

	prompt := buildPrompt(req)

	var lastErr error
	for attempt := 0; attempt <= len(s.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.delays[attempt-1]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		text, err := s.gen(callCtx, prompt)
		cancel()

		if err == nil {
			result := parseInferenceJSON(text, req)
			if result == nil {
				// Malformed response: not retryable, degrade to no result.
				s.log.Warn("ai inference returned unparseable response",
					zap.String("sku", req.VariationSKU))
				return nil, nil
			}
			return result, nil
		}

		if !isRetryable(err) {
			s.log.Warn("ai inference failed",
				zap.String("sku", req.VariationSKU), zap.Error(err))
			return nil, err
		}
		lastErr = err
		s.log.Warn("ai inference attempt failed, retrying",
			zap.String("sku", req.VariationSKU),
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, fmt.Errorf("ai inference exhausted retries: %w", lastErr)
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.ResponseMIMEType = "application/json"

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}
	if text, ok := res.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return fmt.Sprintf("%v", res.Candidates[0].Content.Parts[0]), nil
}

// buildPrompt lays out the parent's attributes and the variation's
// identifying fields, and asks for a strict JSON mapping.
func buildPrompt(req wpimport.InferenceRequest) string {
	var b strings.Builder
	b.WriteString("You match e-commerce product variations to their attribute options.\n")
	fmt.Fprintf(&b, "Parent product: %q\n", req.ParentName)
	b.WriteString("Attributes and their allowed values:\n")
	for _, attr := range req.Attributes {
		fmt.Fprintf(&b, "- %s (%s): %s\n", attr.Key, attr.Name, strings.Join(attr.Values, ", "))
	}
	fmt.Fprintf(&b, "Variation SKU: %q\nVariation name: %q\nPrice: %q\nStock: %q\n",
		req.VariationSKU, req.VariationName, req.Price, req.Stock)
	b.WriteString("Respond with a JSON object mapping each attribute key to exactly one of its allowed values, or null if you cannot tell. No prose.\n")
	return b.String()
}

// parseInferenceJSON decodes the model's response and validates every value
// against the declared value set. A first parse failure triggers a cleanup
// pass (markdown fences, stray prose around the object) before giving up.
// Returns nil only when the response is unusable.
func parseInferenceJSON(text string, req wpimport.InferenceRequest) map[string]string {
	raw := map[string]*string{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		cleaned := cleanupJSON(text)
		if cleaned == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
			return nil
		}
	}

	out := make(map[string]string)
	for _, attr := range req.Attributes {
		val := raw[attr.Key]
		if val == nil || *val == "" {
			continue
		}
		for _, declared := range attr.Values {
			if strings.EqualFold(*val, declared) {
				out[attr.Key] = declared
				break
			}
		}
	}
	return out
}

// cleanupJSON strips markdown fences and anything outside the outermost
// object braces.
func cleanupJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// isRetryable limits retries to timeout and connection-reset class failures;
// everything else propagates immediately.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF")
}

package service

import (
	"context"
	"strings"

	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/Sharadgup/AGI-Innovation/internal/metrics"
	"github.com/rs/zerolog/log"
)

// FallbackLang tags replies produced by the English fallback
const FallbackLang = "en-US"

const (
	apologyNoText      = "I cannot answer in that language. Please try asking in English."
	apologyUnavailable = "I'm currently unable to respond in that language. Please try asking your question in English."
	apologyFailure     = "I experienced an issue trying to explain. Please try asking in English."
)

var inabilityKeywords = []string{"cannot", "unable", "only speak english", "don't speak", "can't generate"}

func isEnglish(lang string) bool {
	return lang == "en-US" || lang == "en-GB"
}

// indicatesInability is a substring heuristic over the reply text
func indicatesInability(text string) bool {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "english") {
		return false
	}
	for _, kw := range inabilityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// needsFallback is true for non-English turns whose answer is empty or a refusal to use the language
func needsFallback(lang string, out llm.Outcome) bool {
	if isEnglish(lang) {
		return false
	}
	switch out.Kind {
	case llm.OutcomeEmpty:
		return true
	case llm.OutcomeSuccess:
		return indicatesInability(out.Text)
	}
	return false
}

// languageFallback asks once for a short English explanation. It never calls the completer again.
func languageFallback(ctx context.Context, c Completer, lang string) Reply {
	metrics.VoiceFallbacksTotal.Inc()
	log.Ctx(ctx).Info().Str("lang", lang).Msg("voice fallback to English")

	out := c.Complete(ctx, llm.ModeSingleShot, llm.Request{
		Message: llm.BuildVoiceFallbackPrompt(llm.LanguageName(lang)),
	})

	reply := Reply{Lang: FallbackLang, Persist: true, Outcome: "fallback"}
	switch out.Kind {
	case llm.OutcomeSuccess:
		reply.Text = strings.TrimSpace(out.Text)
	case llm.OutcomeEmpty:
		reply.Text = apologyNoText
		if out.NoCandidates {
			reply.Text = apologyUnavailable
		}
	case llm.OutcomeBlocked:
		reply.Text = apologyUnavailable
	default:
		log.Ctx(ctx).Error().Err(out.Err).Msg("failed to generate English fallback message")
		reply.Text = apologyFailure
	}
	return reply
}

package tunables

import "time"

// Tunable keys. Remote values override the hardcoded defaults below.
const (
	KeyAIEnabled      = "ai.enabled"
	KeyEnrichEnabled  = "ai.enrich.enabled"
	KeySummaryEnabled = "ai.summary.enabled"

	KeyVisualModel  = "ai.visual.model"
	KeyEnrichModel  = "ai.enrich.model"
	KeySummaryModel = "ai.summary.model"

	KeySearchURL        = "ai.enrich.search.url"
	KeySearchMaxResults = "ai.enrich.search.max_results"

	KeyTemperature = "ai.temperature"
	KeyTopP        = "ai.top_p"
	KeyMaxTokens   = "ai.max_tokens"

	KeyBandLow    = "confidence.band.low"
	KeyBandMedium = "confidence.band.medium"
	KeyBandHigh   = "confidence.band.high"

	KeyOpticalCaptionMax = "optical.caption_max"
	KeyOpticalTextMax    = "optical.text_max"
	KeyOpticalSubheadMax = "optical.subhead_max"

	KeyMaxInFlight = "pipeline.max_in_flight"

	KeyRetryBaseDelay   = "retry.base_delay"
	KeyRetryMultiplier  = "retry.multiplier"
	KeyRetryMaxDelay    = "retry.max_delay"
	KeyRetryMaxAttempts = "retry.max_attempts"
)

// Bands holds confidence-band cutoffs. A score below Low is discarded as
// noise by callers; Medium and High bound the remaining buckets.
type Bands struct {
	Low    float64
	Medium float64
	High   float64
}

// LoadBands reads band cutoffs from the provider with standard defaults.
func LoadBands(p Provider) Bands {
	return Bands{
		Low:    Float(p, KeyBandLow, 0.2),
		Medium: Float(p, KeyBandMedium, 0.6),
		High:   Float(p, KeyBandHigh, 0.85),
	}
}

// Classify buckets a confidence score into "low", "medium", or "high".
func (b Bands) Classify(score float64) string {
	switch {
	case score >= b.High:
		return "high"
	case score >= b.Medium:
		return "medium"
	default:
		return "low"
	}
}

// Optical holds the point-size thresholds for optical-size buckets.
type Optical struct {
	CaptionMax float64
	TextMax    float64
	SubheadMax float64
}

// LoadOptical reads optical thresholds from the provider with defaults.
func LoadOptical(p Provider) Optical {
	return Optical{
		CaptionMax: Float(p, KeyOpticalCaptionMax, 9),
		TextMax:    Float(p, KeyOpticalTextMax, 14),
		SubheadMax: Float(p, KeyOpticalSubheadMax, 24),
	}
}

// Retry holds bounded exponential backoff parameters for model calls.
type Retry struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int
}

// LoadRetry reads retry parameters from the provider with defaults.
func LoadRetry(p Provider) Retry {
	return Retry{
		BaseDelay:   Duration(p, KeyRetryBaseDelay, 500*time.Millisecond),
		Multiplier:  Float(p, KeyRetryMultiplier, 2.0),
		MaxDelay:    Duration(p, KeyRetryMaxDelay, 30*time.Second),
		MaxAttempts: Int(p, KeyRetryMaxAttempts, 4),
	}
}

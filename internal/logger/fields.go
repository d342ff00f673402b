package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidateID is the structured log field key for a candidate identifier.
	FieldCandidateID = "candidate_id"
	// FieldJobID is the structured log field key for a job identifier.
	FieldJobID = "job_id"
	// FieldRequestID is the structured log field key for a scoring request identifier.
	FieldRequestID = "request_id"
	// FieldModelVersion is the structured log field key for the scoring model version.
	FieldModelVersion = "model_version"
	// FieldOracle is the structured log field key for the similarity provider name.
	FieldOracle = "oracle"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PairFields returns the candidate and job fields that identify a scoring pair.
// Empty values are ignored to keep log entries compact.
func PairFields(candidateID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidateID, Value: candidateID},
		StringField{Key: FieldJobID, Value: jobID},
	)
}

// WithPair attaches the candidate and job fields to the provided logger.
func WithPair(logger *zap.Logger, candidateID, jobID string) *zap.Logger {
	return WithFields(logger, PairFields(candidateID, jobID)...)
}

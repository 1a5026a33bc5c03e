package security

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/go-playground/validator/v10"
)

// Validator checks recipe batches before they reach the store
type Validator struct {
	maxPayloadSize int64
	maxBatchSize   int
	structs        *validator.Validate
}

// NewValidator creates a new batch validator
func NewValidator(maxPayloadSize int64, maxBatchSize int) *Validator {
	slog.Info("security_validator_init",
		"max_payload_size_kb", maxPayloadSize/1024,
		"max_batch_size", maxBatchSize)

	return &Validator{
		maxPayloadSize: maxPayloadSize,
		maxBatchSize:   maxBatchSize,
		structs:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateKey checks an object key before it is mapped onto a local path
func (v *Validator) ValidateKey(key string) error {
	if key == "" {
		slog.Error("security_key_validation_failed", "key", key, "reason", "empty")
		return fmt.Errorf("security: empty key")
	}

	// Reject absolute paths
	if filepath.IsAbs(key) {
		slog.Error("security_key_validation_failed", "key", key, "reason", "absolute_path")
		return fmt.Errorf("security: absolute path not allowed: %s", key)
	}

	// Reject keys that escape the download directory once cleaned
	clean := filepath.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		slog.Error("security_key_validation_failed", "key", key, "reason", "path_traversal")
		return fmt.Errorf("security: path traversal detected: %s", key)
	}

	return nil
}

// ValidatePayloadSize checks if a batch document exceeds the max payload size
func (v *Validator) ValidatePayloadSize(size int64) error {
	if size > v.maxPayloadSize {
		slog.Error("security_payload_size_exceeded",
			"payload_size", size,
			"max_payload_size", v.maxPayloadSize)
		return fmt.Errorf("security: payload size %d exceeds max %d", size, v.maxPayloadSize)
	}
	return nil
}

// ValidateRecipe checks a single recipe's fields
func (v *Validator) ValidateRecipe(rec *db.Recipe) error {
	if err := v.structs.Struct(rec); err != nil {
		slog.Error("security_recipe_validation_failed", "recipe_name", rec.Name, "error", err)
		return fmt.Errorf("security: invalid recipe %q: %w", rec.Name, err)
	}
	return nil
}

// ValidateBatch checks the batch size and every recipe in it
func (v *Validator) ValidateBatch(recipes []*db.Recipe) error {
	if len(recipes) == 0 {
		slog.Error("security_batch_validation_failed", "reason", "empty")
		return fmt.Errorf("security: batch contains no recipes")
	}
	if len(recipes) > v.maxBatchSize {
		slog.Error("security_batch_size_exceeded", "batch_size", len(recipes), "max_batch_size", v.maxBatchSize)
		return fmt.Errorf("security: batch size %d exceeds max %d", len(recipes), v.maxBatchSize)
	}

	for i, rec := range recipes {
		if err := v.ValidateRecipe(rec); err != nil {
			return fmt.Errorf("recipe %d: %w", i, err)
		}
	}

	slog.Info("security_batch_validated", "batch_size", len(recipes))
	return nil
}

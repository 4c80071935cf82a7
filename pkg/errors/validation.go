package errors

import (
	"strings"
	"unicode"
)

// Accepted values for the enum-like inputs. The grid package owns the typed
// constants; these lists mirror them so validation has no import cycle.
var (
	validDirections   = []string{"h", "v"}
	validSides        = []string{"top", "bottom", "left", "right"}
	validResizeStyles = []string{"stateful", "passive", "push"}
)

// ValidateDirection validates a grid split direction ("h" or "v").
// An empty direction is accepted and means "use the configured default".
func ValidateDirection(dir string) error {
	if dir == "" {
		return nil
	}
	for _, d := range validDirections {
		if dir == d {
			return nil
		}
	}
	return New(ErrCodeInvalidDirection, "invalid direction %q (want h or v)", dir)
}

// ValidateSide validates a node side name.
func ValidateSide(side string) error {
	for _, s := range validSides {
		if side == s {
			return nil
		}
	}
	return New(ErrCodeInvalidSide, "invalid side %q (want %s)", side, strings.Join(validSides, ", "))
}

// ValidateResizeStyle validates a resize policy name.
// An empty style is accepted and means "use the default".
func ValidateResizeStyle(style string) error {
	if style == "" {
		return nil
	}
	for _, s := range validResizeStyles {
		if style == s {
			return nil
		}
	}
	return New(ErrCodeInvalidStyle, "invalid resize style %q (want %s)", style, strings.Join(validResizeStyles, ", "))
}

// ValidateComponentID validates a tile component identifier.
//
// Component ids are opaque to the engine but are echoed into logs, DOT labels,
// and HTTP responses, so the rules are conservative:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//
// An empty id is valid: it marks a tile that only holds tabs.
func ValidateComponentID(id string) error {
	if len(id) > 256 {
		return New(ErrCodeInvalidDescription, "component id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDescription, "component id contains invalid control characters")
		}
	}
	return nil
}

// ValidateWeight validates a declared sibling weight.
// Zero means "unset" and is accepted.
func ValidateWeight(w float64) error {
	if w < 0 || w > 100 {
		return New(ErrCodeInvalidDescription, "weight %v out of range [0, 100]", w)
	}
	return nil
}

// ValidateMinimum validates a declared minimum size in pixels or percent.
func ValidateMinimum(name string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidDescription, "%s must not be negative (got %v)", name, v)
	}
	if strings.HasSuffix(name, "min_pct") && v > 100 {
		return New(ErrCodeInvalidDescription, "%s must not exceed 100 (got %v)", name, v)
	}
	return nil
}

// ValidatePath validates a layout file path supplied on the command line or
// over HTTP.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

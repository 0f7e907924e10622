package chatsdk

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateParticipant checks a participant's generation parameters against
// their allowed ranges: temperature in [0,2], top_p in [0,1], top_k >= 0,
// max_tokens > 0, and a non-empty entity name.
func ValidateParticipant(p Participant) error {
	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid participant: field %s failed %q with value '%v'", e.Field(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}

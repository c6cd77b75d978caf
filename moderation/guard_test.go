package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuard_Masks_Blocked_Words(t *testing.T) {
	req := require.New(t)
	guard, err := NewGuard([]string{"badger"}, '*')
	req.NoError(err)

	clean, _ := guard.Sanitize("the badger strikes again")
	req.Equal("the ****** strikes again", clean)
}

func TestGuard_Folds_Leet_Speak(t *testing.T) {
	req := require.New(t)
	guard, err := NewGuard([]string{"badger"}, '*')
	req.NoError(err)

	clean, _ := guard.Sanitize("the b4dg3r strikes")
	req.Equal("the ****** strikes", clean)
}

func TestGuard_Leaves_Clean_Text_Untouched(t *testing.T) {
	req := require.New(t)
	guard, err := NewGuard([]string{"badger"}, '*')
	req.NoError(err)

	original := "nothing to see here"
	clean, lang := guard.Sanitize(original)
	req.Equal(original, clean)
	req.Equal("en", lang)
}

func TestGuard_Masks_Across_Punctuation(t *testing.T) {
	req := require.New(t)
	guard, err := NewGuard([]string{"badger"}, '*')
	req.NoError(err)

	clean, _ := guard.Sanitize("the b-a-d-g-e-r strikes")
	req.NotContains(clean, "b-a-d-g-e-r")
}

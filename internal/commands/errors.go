package commands

import (
	"errors"
	"fmt"

	"spendwatch/internal/core"
	"spendwatch/internal/store"
)

// explain attaches the recovery hint the user needs for err.
func explain(err error) error {
	if err == nil {
		return nil
	}

	var verrs core.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 1 {
		msg := "invalid input:"
		for _, fe := range verrs {
			msg += "\n  " + fe.Error()
		}
		return errors.New(msg)
	}

	switch store.KindOf(err) {
	case store.KindBudgetExceeded:
		return fmt.Errorf("%w\nRaise this month's budget first: spendwatch budget set --total <amount> --limit <amount>", err)
	case store.KindUnauthorized:
		return fmt.Errorf("%w\nYour session is no longer valid; set a fresh API_ACCESS_TOKEN and try again", err)
	case store.KindTransient:
		return fmt.Errorf("%w\nThe backend could not be reached; nothing was changed, try again later", err)
	}
	return err
}

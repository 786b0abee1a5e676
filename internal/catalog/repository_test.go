package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillswap/backend/internal/models"
)

func TestMapFKViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "skill_offerings_category_id_fkey"}
	if got := mapFKViolation(fkErr); !errors.Is(got, models.ErrNotFound) {
		t.Errorf("fk violation on insert: got %v, want ErrNotFound", got)
	}
	if got := mapFKViolation(fmt.Errorf("wrapped: %w", fkErr)); !errors.Is(got, models.ErrNotFound) {
		t.Errorf("wrapped fk violation: got %v, want ErrNotFound", got)
	}

	other := errors.New("connection reset")
	if got := mapFKViolation(other); got != other {
		t.Errorf("unrelated error must pass through, got %v", got)
	}
	if got := mapFKViolation(nil); got != nil {
		t.Errorf("nil must pass through, got %v", got)
	}
}

// A delete blocked by a swap still referencing the skill surfaces as a
// conflict, not an internal error, even when every referencing swap is
// terminal and the open-swap count saw none.
func TestMapRestrictViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "swaps_offering_id_fkey"}
	if got := mapRestrictViolation(fkErr); !errors.Is(got, models.ErrConflict) {
		t.Errorf("fk violation on delete: got %v, want ErrConflict", got)
	}

	unique := &pgconn.PgError{Code: "23505"}
	if got := mapRestrictViolation(unique); !errors.Is(got, unique) {
		t.Errorf("non-fk pg error must pass through, got %v", got)
	}
	if got := mapRestrictViolation(nil); got != nil {
		t.Errorf("nil must pass through, got %v", got)
	}
}

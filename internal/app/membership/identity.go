// internal/app/membership/identity.go
package membership

import (
	"context"
	"fmt"
	"strconv"

	counterstore "github.com/dalemusser/memberhub/internal/app/store/counters"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// Floors for freshly allocated identifiers.
const (
	SerialFloor     int64 = 10001
	MemberCodeFloor int64 = 10000
)

// MemberPrefixes lists every member-code prefix.
var MemberPrefixes = []string{"C", "I", "S", "H"}

// PrefixFor returns the member-code prefix for a membership type. Anything
// unrecognized is treated as honorary.
func PrefixFor(membershipType string) string {
	switch membershipType {
	case models.MembershipCorporate:
		return "C"
	case models.MembershipIndividual:
		return "I"
	case models.MembershipSpecialHonorary:
		return "S"
	default:
		return "H"
	}
}

// FormatSerial renders a serial zero-padded to at least five digits.
func FormatSerial(n int64) string { return fmt.Sprintf("%05d", n) }

// FormatMemberCode joins prefix and number, e.g. "C10000".
func FormatMemberCode(prefix string, n int64) string {
	return prefix + strconv.FormatInt(n, 10)
}

// NextFromMax is the value that follows current, never below floor.
func NextFromMax(current, floor int64) int64 {
	if current+1 < floor {
		return floor
	}
	return current + 1
}

// Identity is the pair of identifiers a member receives on approval.
type Identity struct {
	UniqueID string
	MemberID string
}

// allocate draws the next serial and the next member code for
// membershipType. Each draw is a single atomic counter update.
func (s *Service) allocate(ctx context.Context, membershipType string) (Identity, error) {
	serial, err := s.counters.Next(ctx, counterstore.GlobalSerial, SerialFloor)
	if err != nil {
		return Identity{}, fmt.Errorf("allocate serial: %w", err)
	}
	prefix := PrefixFor(membershipType)
	n, err := s.counters.Next(ctx, counterstore.MemberSeq(prefix), MemberCodeFloor)
	if err != nil {
		return Identity{}, fmt.Errorf("allocate member code: %w", err)
	}
	return Identity{UniqueID: FormatSerial(serial), MemberID: FormatMemberCode(prefix, n)}, nil
}

// IdentifierMaxima reports the largest identifiers already held by users.
type IdentifierMaxima interface {
	MaxSerial(ctx context.Context) (int64, error)
	MaxMemberNumber(ctx context.Context, prefix string) (int64, error)
}

// CounterRaiser lifts a counter to at least a value.
type CounterRaiser interface {
	RaiseTo(ctx context.Context, name string, value int64) error
}

// SeedCounters raises every counter to the highest identifier already in
// use so allocation continues after existing data. Safe to run on every
// startup.
func SeedCounters(ctx context.Context, users IdentifierMaxima, counters CounterRaiser) error {
	maxSerial, err := users.MaxSerial(ctx)
	if err != nil {
		return fmt.Errorf("scan serials: %w", err)
	}
	if maxSerial > 0 {
		if err := counters.RaiseTo(ctx, counterstore.GlobalSerial, maxSerial); err != nil {
			return fmt.Errorf("seed %s: %w", counterstore.GlobalSerial, err)
		}
	}
	for _, p := range MemberPrefixes {
		n, err := users.MaxMemberNumber(ctx, p)
		if err != nil {
			return fmt.Errorf("scan member codes %s: %w", p, err)
		}
		if n == 0 {
			continue
		}
		if err := counters.RaiseTo(ctx, counterstore.MemberSeq(p), n); err != nil {
			return fmt.Errorf("seed %s: %w", counterstore.MemberSeq(p), err)
		}
	}
	return nil
}

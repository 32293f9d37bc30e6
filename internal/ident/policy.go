// Package ident assigns node identifiers according to a generation policy.
package ident

import (
	"fmt"
	"strconv"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/google/uuid"
)

// Policy is the rule used to produce an id for a node that declares none.
type Policy int

const (
	PolicyName Policy = iota + 1
	PolicyUUID
	PolicyError
	PolicyIncremental
)

var policyNames = map[Policy]string{
	PolicyName:        "name",
	PolicyUUID:        "uuid",
	PolicyError:       "error",
	PolicyIncremental: "incremental",
}

// Policies lists the recognized id_generation values.
var Policies = []string{"name", "uuid", "error", "incremental"}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy resolves an id_generation value.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, graph.Configuration(graph.ErrUnsupportedPolicy,
		fmt.Sprintf("id_generation %q not supported, must be one of %v", s, Policies))
}

// TokenLen is the length of ids generated under PolicyUUID.
const TokenLen = 6

// NewToken returns a short random token cut from a v4 UUID.
func NewToken() string {
	return uuid.NewString()[:TokenLen]
}

// Assigner produces ids for one build. It is not safe for concurrent use
// and must not be shared between builds.
type Assigner struct {
	policy   Policy
	generate func(name string) (graph.ID, error)
	token    func() string
	ints     *roaring64.Bitmap // integer ids seen so far
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithTokenSource replaces the random token generator used by PolicyUUID.
func WithTokenSource(fn func() string) Option {
	return func(a *Assigner) { a.token = fn }
}

// NewAssigner returns an Assigner for policy.
func NewAssigner(policy Policy, opts ...Option) *Assigner {
	a := &Assigner{
		policy: policy,
		token:  NewToken,
		ints:   roaring64.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	switch policy {
	case PolicyName:
		a.generate = func(name string) (graph.ID, error) { return graph.TextID(name), nil }
	case PolicyUUID:
		a.generate = func(string) (graph.ID, error) { return graph.TextID(a.token()), nil }
	case PolicyIncremental:
		a.generate = a.next
	default:
		a.generate = func(name string) (graph.ID, error) {
			e := graph.Structural(graph.ErrMissingIdentifier, graph.ID{}, "no id provided")
			e.Name = name
			return graph.ID{}, e
		}
	}
	return a
}

// Policy returns the policy the Assigner was built with.
func (a *Assigner) Policy() Policy { return a.policy }

// Normalize converts a declared id according to the policy. Under
// PolicyIncremental the value must be an integer or a digit-only string.
// The reserved root id is rejected for every policy.
func (a *Assigner) Normalize(declared any) (graph.ID, error) {
	id, err := graph.ParseID(declared)
	if err != nil {
		return graph.ID{}, err
	}
	if a.policy == PolicyIncremental {
		if id, err = toInteger(id, declared); err != nil {
			return graph.ID{}, err
		}
	}
	if id == graph.RootID {
		return graph.ID{}, graph.Structural(graph.ErrReservedIdentifier, id, "id 0 is reserved for root node")
	}
	return id, nil
}

// Reserve records a declared id ahead of the build so that generated
// integers never collide with it.
func (a *Assigner) Reserve(declared any) error {
	id, err := a.Normalize(declared)
	if err != nil {
		return err
	}
	a.record(id)
	return nil
}

// Assign returns the id for a node named name. declared is the raw id
// value from the description, or nil when absent.
func (a *Assigner) Assign(name string, declared any) (graph.ID, error) {
	var (
		id  graph.ID
		err error
	)
	if declared != nil {
		id, err = a.Normalize(declared)
	} else {
		id, err = a.generate(name)
	}
	if err != nil {
		return graph.ID{}, err
	}
	a.record(id)
	return id, nil
}

// Max returns the largest integer id recorded so far.
func (a *Assigner) Max() (uint64, bool) {
	if a.ints.IsEmpty() {
		return 0, false
	}
	return a.ints.Maximum(), true
}

func (a *Assigner) next(string) (graph.ID, error) {
	if hi, ok := a.Max(); ok {
		return graph.IntID(hi + 1), nil
	}
	return graph.IntID(1), nil
}

func (a *Assigner) record(id graph.ID) {
	if n, ok := id.Int(); ok {
		a.ints.Add(n)
	}
}

func toInteger(id graph.ID, raw any) (graph.ID, error) {
	if id.Numeric() {
		return id, nil
	}
	s := id.String()
	if !isDigits(s) {
		return graph.ID{}, graph.Format(graph.ErrInvalidIdentifierFormat, raw,
			"with id_generation incremental id must be an integer")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return graph.ID{}, graph.Format(graph.ErrInvalidIdentifierFormat, raw, err.Error())
	}
	return graph.IntID(n), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

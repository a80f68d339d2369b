package aggregates

// TxOwnership says who opens the write transaction.
type TxOwnership string

// TxOwnedByAggregate: write methods open and commit their own transaction; callers
// never pass one in.
const TxOwnedByAggregate TxOwnership = "aggregate_owned"

// Contract is the self-description every aggregate exposes. Reads beyond what a write
// needs to check its invariants stay on the table repos.
type Contract struct {
	Name        string
	TxOwnership TxOwnership
	Notes       string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) OwnsTx() bool {
	return c.TxOwnership == TxOwnedByAggregate
}

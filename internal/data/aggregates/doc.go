// Package aggregates implements the domain aggregate contracts on top of the table
// repos in internal/data/repos.
//
// Every write runs inside one transaction owned by the aggregate (TxRunner), is mapped
// to a *domain/aggregates.Error by MapError and reported through Hooks.
package aggregates

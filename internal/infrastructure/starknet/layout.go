package starknet

import "github.com/fernetbarato/fernet-barato/api/internal/codec"

// Raw contract structs, field by field as the contract serialises them.

type rawPrice struct {
	Amount    codec.Value
	Timestamp codec.Value
}

type rawStore struct {
	ID      codec.Value
	Name    codec.Value
	Address codec.Value
	Hours   codec.Value
	URI     codec.Value
	Price   rawPrice
}

type rawReport struct {
	StoreID     codec.Value
	Description codec.Value
	SubmittedAt codec.Value
	SubmittedBy codec.Value
}

// priceEntryFelts is the fixed width of a (u64, Price) tuple: id, low, high, timestamp.
const priceEntryFelts = 4

func readPrice(c *cursor) (rawPrice, error) {
	amount, err := c.u256()
	if err != nil {
		return rawPrice{}, err
	}
	ts, err := c.felt()
	if err != nil {
		return rawPrice{}, err
	}
	return rawPrice{Amount: amount, Timestamp: ts}, nil
}

func readStore(c *cursor) (rawStore, error) {
	var s rawStore
	var err error

	if s.ID, err = c.felt(); err != nil {
		return rawStore{}, err
	}
	for _, field := range []*codec.Value{&s.Name, &s.Address, &s.Hours, &s.URI} {
		if *field, err = c.byteArray(); err != nil {
			return rawStore{}, err
		}
	}
	if s.Price, err = readPrice(c); err != nil {
		return rawStore{}, err
	}
	return s, nil
}

func readReport(c *cursor) (rawReport, error) {
	var r rawReport
	var err error

	if r.StoreID, err = c.felt(); err != nil {
		return rawReport{}, err
	}
	if r.Description, err = c.byteArray(); err != nil {
		return rawReport{}, err
	}
	if r.SubmittedAt, err = c.felt(); err != nil {
		return rawReport{}, err
	}
	if r.SubmittedBy, err = c.felt(); err != nil {
		return rawReport{}, err
	}
	return r, nil
}

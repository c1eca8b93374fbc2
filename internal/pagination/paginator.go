// Package pagination turns account ids into opaque resumption cursors and
// back. Cursors are hashids, so they round-trip exactly but reveal nothing
// about the id space without the salt.
package pagination

import (
	"github.com/speps/go-hashids/v2"

	"github.com/accountio/ledger-service/internal/models"
)

// Paginator encodes and decodes pagination cursors. It is stateless apart
// from the codec and safe for concurrent use.
type Paginator struct {
	codec *hashids.HashID
	minID int64
}

// New builds a Paginator with the given salt. minID is the store's minimum
// marker: the exclusive lower boundary meaning "start from the beginning".
func New(salt string, minID int64) (*Paginator, error) {
	data := hashids.NewData()
	data.Salt = salt
	codec, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Paginator{codec: codec, minID: minID}, nil
}

// Decode maps a cursor to the exclusive id boundary it encodes. Empty and
// malformed cursors both decode to the minimum marker, so a bad cursor
// restarts the listing instead of failing the request.
func (p *Paginator) Decode(cursor string) int64 {
	if cursor == "" {
		return p.minID
	}
	ids, err := p.codec.DecodeInt64WithError(cursor)
	if err != nil || len(ids) == 0 {
		return p.minID
	}
	return ids[0]
}

// Encode produces the opaque cursor for an id, such that Decode(Encode(id))
// returns id.
func (p *Paginator) Encode(id int64) (string, error) {
	return p.codec.EncodeInt64([]int64{id})
}

// NextCursor derives the resumption cursor from a result page: the last id
// in the page, or the minimum marker when the page is empty.
func (p *Paginator) NextCursor(page []models.Account) (string, error) {
	if len(page) == 0 {
		return p.Encode(p.minID)
	}
	return p.Encode(page[len(page)-1].ID)
}

package auction

import (
	"context"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// Queue yields catalog players in a reproducible order (name asc, id asc),
// skipping players already sold.
type Queue struct {
	Repo repository.Repository
}

// NextUnsold returns the first unsold player, or the first unsold player
// strictly after afterPlayerID when a cursor is given. An unknown cursor
// behaves as if none were given. Exhaustion returns nil, not an error.
func (q *Queue) NextUnsold(ctx context.Context, afterPlayerID *string) (*models.Player, error) {
	players, err := q.Repo.ListPlayers(ctx)
	if err != nil {
		return nil, persistence("list players", err)
	}
	soldIDs, err := q.Repo.ListSoldPlayerIDs(ctx)
	if err != nil {
		return nil, persistence("list sold players", err)
	}
	sold := make(map[string]struct{}, len(soldIDs))
	for _, id := range soldIDs {
		sold[id] = struct{}{}
	}

	start := 0
	if afterPlayerID != nil {
		for i := range players {
			if players[i].ID == *afterPlayerID {
				start = i + 1
				break
			}
		}
	}
	for i := start; i < len(players); i++ {
		if _, ok := sold[players[i].ID]; !ok {
			p := players[i]
			return &p, nil
		}
	}
	return nil, nil
}

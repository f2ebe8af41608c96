package store

import "github.com/jackc/pgx/v5/pgxpool"

// Stores bundles every persistence port the service needs.
type Stores struct {
	Users     UserStore
	Trust     TrustStore
	Posts     PostStore
	Comments  CommentStore
	Friends   FriendStore
	Reports   ReportStore
	Devices   DeviceStore
	RateMarks RateMarkStore
}

func NewInMemoryStores() Stores {
	users := NewInMemoryUserStore()
	return Stores{
		Users:     users,
		Trust:     users,
		Posts:     NewInMemoryPostStore(),
		Comments:  NewInMemoryCommentStore(),
		Friends:   NewInMemoryFriendStore(),
		Reports:   NewInMemoryReportStore(),
		Devices:   NewInMemoryDeviceStore(),
		RateMarks: NewInMemoryRateMarkStore(),
	}
}

func NewPostgresStores(pool *pgxpool.Pool) Stores {
	users := NewPostgresUserStore(pool)
	return Stores{
		Users:     users,
		Trust:     users,
		Posts:     NewPostgresPostStore(pool),
		Comments:  NewPostgresCommentStore(pool),
		Friends:   NewPostgresFriendStore(pool),
		Reports:   NewPostgresReportStore(pool),
		Devices:   NewPostgresDeviceStore(pool),
		RateMarks: NewPostgresRateMarkStore(pool),
	}
}

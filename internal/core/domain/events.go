package domain

type EscrowEvent interface {
	isEvent()
}

func (e EscrowCreated) isEvent()   {}
func (e EscrowWithdrawn) isEvent() {}
func (e EscrowRecovered) isEvent() {}

type EscrowCreated struct {
	Id            string
	From          string
	To            string
	Resolver      string
	AssetKind     string
	AssetAmount   uint64
	SafetyDeposit uint64
	ChainId       uint64
	IsSourceChain bool
	SecretHash    []byte
	CreatedAt     int64
	Role          TimelockRole
	Durations     PhaseDurations
	Timestamp     int64
}

type EscrowWithdrawn struct {
	Id          string
	Recipient   string
	Resolver    string
	AssetKind   string
	AssetAmount uint64
	Secret      []byte
	Timestamp   int64
}

type EscrowRecovered struct {
	Id          string
	RecoveredBy string
	ReturnedTo  string
	AssetKind   string
	AssetAmount uint64
	Timestamp   int64
}

package domain

import "time"

type AccountStatus string

const (
	AccountInit     AccountStatus = "INIT"
	AccountCreating AccountStatus = "CREATING"
	AccountCreated  AccountStatus = "CREATED"
	AccountFailed   AccountStatus = "FAILED"
)

// Account is a platform user identity. Address is the raw key-pair
// address recovered keys must match; AccountAbstractionAddress is the
// on-chain smart wallet that actually holds funds.
type Account struct {
	ID                        string
	Email                     string
	Address                   string
	AccountAbstractionAddress string
	EncryptedShard            string
	FiatWalletID              string
	ChainTransactionID        string
	Status                    AccountStatus
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Token is a fungible-asset descriptor. Decimals drives the
// smallest-unit conversion of every monetary field.
type Token struct {
	ID        string
	Name      string
	Symbol    string
	Address   string
	Decimals  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

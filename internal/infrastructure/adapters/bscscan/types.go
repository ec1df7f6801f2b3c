package bscscan

import (
	"encoding/json"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

const (
	DefaultBaseURL = "https://api.bscscan.com/api"

	ActionTxList  = "txlist"
	ActionTokenTx = "tokentx"

	StatusOK = "1"

	// Explorer window for account queries.
	startBlock = "0"
	endBlock   = "99999999"
)

// envelope is the explorer's response wrapper. Result is an array on success
// and a string message on failure.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// RawTransaction is one explorer record. Native and token listings share the
// shape; token-only fields are empty for native transfers.
type RawTransaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	TokenName       string `json:"tokenName,omitempty"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	TokenDecimal    string `json:"tokenDecimal,omitempty"`
}

func (r RawTransaction) toEntity() entities.ExplorerTransaction {
	return entities.ExplorerTransaction{
		BlockNumber:     r.BlockNumber,
		TimeStamp:       r.TimeStamp,
		Hash:            r.Hash,
		From:            r.From,
		To:              r.To,
		Value:           r.Value,
		Gas:             r.Gas,
		GasPrice:        r.GasPrice,
		GasUsed:         r.GasUsed,
		IsError:         r.IsError,
		ContractAddress: r.ContractAddress,
		TokenName:       r.TokenName,
		TokenSymbol:     r.TokenSymbol,
		TokenDecimal:    r.TokenDecimal,
	}
}

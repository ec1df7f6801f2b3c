package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func TestUserDoc_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user *entities.User
	}{
		{
			name: "no PIN and no linked wallet",
			user: &entities.User{
				ID: uuid.New(), Username: "alice", PasswordHash: "$2a$04$hash",
				Balance: decimal.RequireFromString("1500.25"), CreatedAt: created, UpdatedAt: created,
			},
		},
		{
			name: "PIN and wallet set",
			user: &entities.User{
				ID: uuid.New(), Username: "bob", PasswordHash: "$2a$04$hash",
				PINHash: strPtr("$2a$04$pin"), PINFailures: 3,
				Balance:       decimal.RequireFromString("0.000000000000000001"),
				LinkedAddress: strPtr("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"),
				CreatedAt:     created, UpdatedAt: created.Add(time.Hour),
			},
		},
		{
			name: "large balance keeps every digit",
			user: &entities.User{
				ID: uuid.New(), Username: "carol",
				Balance:   decimal.RequireFromString("123456789012345678.123456789012345678"),
				CreatedAt: created, UpdatedAt: created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newUserDoc(tt.user).entity()
			require.NoError(t, err)

			assert.Equal(t, tt.user.ID, got.ID)
			assert.Equal(t, tt.user.Username, got.Username)
			assert.Equal(t, tt.user.PasswordHash, got.PasswordHash)
			assert.Equal(t, tt.user.PINHash, got.PINHash)
			assert.Equal(t, tt.user.HasPIN(), got.HasPIN())
			assert.Equal(t, tt.user.PINFailures, got.PINFailures)
			assert.Equal(t, tt.user.Balance.String(), got.Balance.String())
			assert.Equal(t, tt.user.LinkedAddress, got.LinkedAddress)
			assert.True(t, tt.user.CreatedAt.Equal(got.CreatedAt))
			assert.True(t, tt.user.UpdatedAt.Equal(got.UpdatedAt))
		})
	}
}

func TestUserDoc_NilPINSurvivesBSON(t *testing.T) {
	user := &entities.User{ID: uuid.New(), Username: "alice", Balance: decimal.NewFromInt(1)}

	raw, err := bson.Marshal(newUserDoc(user))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "pin_hash")
	assert.NotContains(t, fields, "linked_address")

	var doc userDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got, err := doc.entity()
	require.NoError(t, err)
	assert.Nil(t, got.PINHash)
	assert.False(t, got.HasPIN())
}

func TestGoalDoc_RoundTrip(t *testing.T) {
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		goal *entities.SavingsGoal
	}{
		{
			name: "without auto-save",
			goal: &entities.SavingsGoal{
				ID: uuid.New(), UserID: uuid.New(), Title: "Laptop",
				TargetAmount: decimal.RequireFromString("2000"), CurrentAmount: decimal.RequireFromString("350.75"),
				Deadline: deadline,
			},
		},
		{
			name: "with auto-save",
			goal: &entities.SavingsGoal{
				ID: uuid.New(), UserID: uuid.New(), Title: "Trip",
				TargetAmount: decimal.RequireFromString("999.999999"), CurrentAmount: decimal.Zero,
				Deadline: deadline, AutoSaveEnabled: true,
				AutoSaveAmount: decimal.RequireFromString("12.5"), AutoSaveFrequency: entities.FrequencyWeekly,
				SavingStreak: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newGoalDoc(tt.goal).entity()
			require.NoError(t, err)

			assert.Equal(t, tt.goal.ID, got.ID)
			assert.Equal(t, tt.goal.UserID, got.UserID)
			assert.Equal(t, tt.goal.Title, got.Title)
			assert.Equal(t, tt.goal.TargetAmount.String(), got.TargetAmount.String())
			assert.Equal(t, tt.goal.CurrentAmount.String(), got.CurrentAmount.String())
			assert.Equal(t, tt.goal.AutoSaveEnabled, got.AutoSaveEnabled)
			assert.Equal(t, tt.goal.AutoSaveAmount.String(), got.AutoSaveAmount.String())
			assert.Equal(t, tt.goal.AutoSaveFrequency, got.AutoSaveFrequency)
			assert.Equal(t, tt.goal.SavingStreak, got.SavingStreak)
			assert.True(t, tt.goal.Deadline.Equal(got.Deadline))
		})
	}
}

func TestGoalDoc_EmptyAutoSaveAmountIsZero(t *testing.T) {
	doc := newGoalDoc(&entities.SavingsGoal{ID: uuid.New(), UserID: uuid.New(), TargetAmount: decimal.NewFromInt(10)})
	doc.AutoSaveAmount = ""

	got, err := doc.entity()
	require.NoError(t, err)
	assert.True(t, got.AutoSaveAmount.IsZero())
}

func TestTransactionDoc_RoundTrip(t *testing.T) {
	tx := &entities.Transaction{
		ID: uuid.New(), UserID: uuid.New(),
		Type:      entities.TransactionTypeSend,
		Amount:    decimal.RequireFromString("20.000000000000000001"),
		Address:   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Status:    entities.TransactionStatusCompleted,
		CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}

	doc := newTransactionDoc(tx, 42)
	assert.EqualValues(t, 42, doc.Seq)

	got, err := doc.entity()
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.UserID, got.UserID)
	assert.Equal(t, tx.Type, got.Type)
	assert.Equal(t, "20.000000000000000001", got.Amount.String())
	assert.Equal(t, tx.Address, got.Address)
	assert.Equal(t, tx.Status, got.Status)
	assert.True(t, tx.CreatedAt.Equal(got.CreatedAt))
}

func TestDocuments_RejectCorruptFields(t *testing.T) {
	valid := newTransactionDoc(&entities.Transaction{ID: uuid.New(), UserID: uuid.New(), Amount: decimal.NewFromInt(1)}, 1)

	badID := valid
	badID.ID = "not-a-uuid"
	_, err := badID.entity()
	assert.Error(t, err)

	badAmount := valid
	badAmount.Amount = "1,5"
	_, err = badAmount.entity()
	assert.Error(t, err)

	user := newUserDoc(&entities.User{ID: uuid.New(), Balance: decimal.NewFromInt(1)})
	user.Balance = "abc"
	_, err = user.entity()
	assert.Error(t, err)

	_, err = parseDecimals("1", "x")
	assert.Error(t, err)
}

func TestTransactionQuery(t *testing.T) {
	userID := uuid.New()

	query, opts := transactionQuery(userID, entities.TransactionFilter{})
	assert.Equal(t, bson.M{"user_id": userID.String()}, query)
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}, opts.Sort)
	assert.Nil(t, opts.Limit)

	receive := entities.TransactionTypeReceive
	query, opts = transactionQuery(userID, entities.TransactionFilter{Type: &receive, Limit: 5})
	assert.Equal(t, "receive", query["type"])
	require.NotNil(t, opts.Limit)
	assert.EqualValues(t, 5, *opts.Limit)
}

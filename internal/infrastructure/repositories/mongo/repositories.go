package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
)

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func isNoDocuments(err error) bool {
	return errors.Is(err, mongodrv.ErrNoDocuments)
}

func updateOne(ctx context.Context, c *mongodrv.Collection, id string, set bson.M, notFound error) error {
	set["updated_at"] = now()
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

// lockOne touches updated_at so a concurrent transaction writing the same
// document hits a write conflict and is retried.
func lockOne(ctx context.Context, c *mongodrv.Collection, id string, out interface{}) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": now()}}, opts).Decode(out)
}

type userRepo struct{ db *mongodrv.Database }

func (r *userRepo) coll() *mongodrv.Collection { return r.db.Collection(usersCollection) }

func (r *userRepo) Create(ctx context.Context, user *entities.User) error {
	ts := now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ts
	}
	user.UpdatedAt = ts
	if _, err := r.coll().InsertOne(ctx, newUserDoc(user)); err != nil {
		if mongodrv.IsDuplicateKeyError(err) {
			return apperrors.UserAlreadyExistsError(user.Username)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) find(ctx context.Context, filter bson.M, identifier string) (*entities.User, error) {
	var doc userDoc
	if err := r.coll().FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.UserNotFoundError(identifier)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return doc.entity()
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.find(ctx, bson.M{"_id": id.String()}, id.String())
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var doc userDoc
	if err := lockOne(ctx, r.coll(), id.String(), &doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.UserNotFoundError(id.String())
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return doc.entity()
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.find(ctx, bson.M{"username": username}, username)
}

func (r *userRepo) ListWithLinkedAddress(ctx context.Context) ([]*entities.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll().Find(ctx, bson.M{"linked_address": bson.M{"$ne": nil}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users with linked address: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*entities.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.entity()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"balance": balance.String()}, apperrors.UserNotFoundError(id.String())); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func (r *userRepo) UpdatePINHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	set := bson.M{"pin_hash": pinHash, "pin_failures": 0}
	if err := updateOne(ctx, r.coll(), id.String(), set, apperrors.UserNotFoundError(id.String())); err != nil {
		return fmt.Errorf("update pin hash: %w", err)
	}
	return nil
}

func (r *userRepo) IncrementPINFailures(ctx context.Context, id uuid.UUID) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"pin_failures": 1},
		"$set": bson.M{"updated_at": now()},
	}
	var doc userDoc
	if err := r.coll().FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return 0, apperrors.UserNotFoundError(id.String())
		}
		return 0, fmt.Errorf("increment pin failures: %w", err)
	}
	return doc.PINFailures, nil
}

func (r *userRepo) ResetPINFailures(ctx context.Context, id uuid.UUID) error {
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"pin_failures": 0}, apperrors.UserNotFoundError(id.String())); err != nil {
		return fmt.Errorf("reset pin failures: %w", err)
	}
	return nil
}

func (r *userRepo) UpdateLinkedAddress(ctx context.Context, id uuid.UUID, address *string) error {
	if address == nil {
		res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{
			"$unset": bson.M{"linked_address": ""},
			"$set":   bson.M{"updated_at": now()},
		})
		if err != nil {
			return fmt.Errorf("unlink address: %w", err)
		}
		if res.MatchedCount == 0 {
			return apperrors.UserNotFoundError(id.String())
		}
		return nil
	}
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"linked_address": *address}, apperrors.UserNotFoundError(id.String())); err != nil {
		return fmt.Errorf("update linked address: %w", err)
	}
	return nil
}

type transactionRepo struct{ db *mongodrv.Database }

func (r *transactionRepo) coll() *mongodrv.Collection { return r.db.Collection(transactionsCollection) }

func (r *transactionRepo) Create(ctx context.Context, tx *entities.Transaction) error {
	if err := tx.Type.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now()
	}
	doc := newTransactionDoc(tx, time.Now().UnixNano())
	if _, err := r.coll().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// transactionQuery lists newest first, with seq breaking created_at ties.
func transactionQuery(userID uuid.UUID, filter entities.TransactionFilter) (bson.M, *options.FindOptions) {
	query := bson.M{"user_id": userID.String()}
	if filter.Type != nil {
		query["type"] = string(*filter.Type)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return query, opts
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, error) {
	query, opts := transactionQuery(userID, filter)
	cur, err := r.coll().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	txs := make([]*entities.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.entity()
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *transactionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := r.coll().CountDocuments(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}

type goalRepo struct{ db *mongodrv.Database }

func (r *goalRepo) coll() *mongodrv.Collection { return r.db.Collection(goalsCollection) }

func (r *goalRepo) Create(ctx context.Context, goal *entities.SavingsGoal) error {
	ts := now()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = ts
	}
	goal.UpdatedAt = ts
	if _, err := r.coll().InsertOne(ctx, newGoalDoc(goal)); err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	return nil
}

func (r *goalRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	var doc goalDoc
	if err := r.coll().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFoundError("GOAL")
		}
		return nil, fmt.Errorf("get savings goal: %w", err)
	}
	return doc.entity()
}

func (r *goalRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	var doc goalDoc
	if err := lockOne(ctx, r.coll(), id.String(), &doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFoundError("GOAL")
		}
		return nil, fmt.Errorf("lock savings goal: %w", err)
	}
	return doc.entity()
}

func (r *goalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SavingsGoal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll().Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	var docs []goalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode savings goals: %w", err)
	}
	goals := make([]*entities.SavingsGoal, 0, len(docs))
	for _, d := range docs {
		g, err := d.entity()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (r *goalRepo) UpdateCurrentAmount(ctx context.Context, id uuid.UUID, current decimal.Decimal) error {
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"current_amount": current.String()}, apperrors.NotFoundError("GOAL")); err != nil {
		return fmt.Errorf("update goal amount: %w", err)
	}
	return nil
}

func (r *goalRepo) UpdateAutoSave(ctx context.Context, id uuid.UUID, settings entities.AutoSaveSettings) error {
	set := bson.M{
		"auto_save_enabled":   settings.Enabled,
		"auto_save_amount":    settings.Amount.String(),
		"auto_save_frequency": string(settings.Frequency),
	}
	if err := updateOne(ctx, r.coll(), id.String(), set, apperrors.NotFoundError("GOAL")); err != nil {
		return fmt.Errorf("update goal auto-save: %w", err)
	}
	return nil
}

func (r *goalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundError("GOAL")
	}
	return nil
}

type planRepo struct{ db *mongodrv.Database }

func (r *planRepo) coll() *mongodrv.Collection { return r.db.Collection(plansCollection) }

func (r *planRepo) Create(ctx context.Context, plan *entities.InvestmentPlan) error {
	if err := plan.Frequency.Validate(); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}
	ts := now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = ts
	}
	plan.UpdatedAt = ts
	if _, err := r.coll().InsertOne(ctx, newPlanDoc(plan)); err != nil {
		return fmt.Errorf("create investment plan: %w", err)
	}
	return nil
}

func (r *planRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.InvestmentPlan, error) {
	var doc planDoc
	if err := r.coll().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFoundError("PLAN")
		}
		return nil, fmt.Errorf("get investment plan: %w", err)
	}
	return doc.entity()
}

func (r *planRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.InvestmentPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll().Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list investment plans: %w", err)
	}
	var docs []planDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode investment plans: %w", err)
	}
	plans := make([]*entities.InvestmentPlan, 0, len(docs))
	for _, d := range docs {
		p, err := d.entity()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *planRepo) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"amount": amount.String()}, apperrors.NotFoundError("PLAN")); err != nil {
		return fmt.Errorf("update plan amount: %w", err)
	}
	return nil
}

func (r *planRepo) UpdateAutoInvest(ctx context.Context, id uuid.UUID, autoInvest bool) error {
	if err := updateOne(ctx, r.coll(), id.String(), bson.M{"auto_invest": autoInvest}, apperrors.NotFoundError("PLAN")); err != nil {
		return fmt.Errorf("update plan auto-invest: %w", err)
	}
	return nil
}

func (r *planRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete investment plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundError("PLAN")
	}
	return nil
}

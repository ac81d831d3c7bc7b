package match

import (
	"fmt"
	"log/slog"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/speedy-match/internal/cache"
	"github.com/oggyb/speedy-match/internal/db"
)

// primary identifying field of each watched table
var invalidatingTables = map[string]string{
	"users":          "ID",
	"match_profiles": "UserID",
}

// instance key holding the ids an update selects through its WHERE clause
const whereIDsKey = "speedy_match:where_ids"

// RegisterCacheInvalidation evicts a user's cached match lists (in every
// language) after their users or match_profiles row is created or updated.
//
// Behavior:
//   - Runs after the write is committed.
//   - Statements carrying db.SkipMatchInvalidation are ignored.
//   - Rows are identified from the statement model. When the model carries no
//     id (e.g. Model(&db.User{}).Where("id = ?", id)), the ids matching the
//     update's WHERE clause are read before the update runs.
//   - Eviction errors are logged and returned from the write.
//
// Example:
//
//	gdb.Model(&db.User{}).Where("id = ?", 42).Update("height", 180) // evicts user 42
func RegisterCacheInvalidation(gdb *gorm.DB, rc *cache.RedisCache, languages []string, log *slog.Logger) error {
	watched := func(tx *gorm.DB) (string, bool) {
		if tx.Error != nil || tx.Statement.Schema == nil || db.InvalidationSkipped(tx) {
			return "", false
		}
		fieldName, ok := invalidatingTables[tx.Statement.Schema.Table]
		return fieldName, ok
	}

	collect := func(tx *gorm.DB) {
		fieldName, ok := watched(tx)
		if !ok || len(affectedIDs(tx, fieldName)) > 0 {
			return
		}
		ids, err := whereIDs(tx, fieldName)
		if err != nil {
			log.Error("failed to resolve rows for match cache invalidation", "table", tx.Statement.Schema.Table, "err", err)
			_ = tx.AddError(fmt.Errorf("resolve invalidated users: %w", err))
			return
		}
		tx.InstanceSet(whereIDsKey, ids)
	}

	evict := func(tx *gorm.DB) {
		fieldName, ok := watched(tx)
		if !ok {
			return
		}
		ids := affectedIDs(tx, fieldName)
		if v, ok := tx.InstanceGet(whereIDsKey); ok {
			selected, _ := v.([]uint64)
			ids = append(ids, selected...)
		}
		for _, id := range ids {
			if err := rc.DeleteMatches(tx.Statement.Context, id, languages...); err != nil {
				log.Error("failed to invalidate match cache", "user_id", id, "err", err)
				_ = tx.AddError(fmt.Errorf("invalidate match cache for user %d: %w", id, err))
			}
		}
	}

	err := gdb.Callback().Create().
		After("gorm:commit_or_rollback_transaction").
		Register("speedy_match:invalidate_on_create", evict)
	if err != nil {
		return fmt.Errorf("register create invalidation: %w", err)
	}
	err = gdb.Callback().Update().
		Before("gorm:update").
		Register("speedy_match:collect_where_ids", collect)
	if err != nil {
		return fmt.Errorf("register update id collection: %w", err)
	}
	err = gdb.Callback().Update().
		After("gorm:commit_or_rollback_transaction").
		Register("speedy_match:invalidate_on_update", evict)
	if err != nil {
		return fmt.Errorf("register update invalidation: %w", err)
	}
	return nil
}

// affectedIDs reads the identifying field from the statement model, which is
// a struct or a slice of structs.
func affectedIDs(tx *gorm.DB, fieldName string) []uint64 {
	stmt := tx.Statement
	field := stmt.Schema.LookUpField(fieldName)
	if field == nil {
		return nil
	}

	var ids []uint64
	collect := func(v reflect.Value) {
		v = reflect.Indirect(v)
		if v.Kind() != reflect.Struct {
			return
		}
		val, zero := field.ValueOf(stmt.Context, v)
		if zero {
			return
		}
		if id, ok := val.(uint64); ok {
			ids = append(ids, id)
		}
	}

	rv := stmt.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			collect(rv.Index(i))
		}
	default:
		collect(rv)
	}
	return ids
}

// whereIDs plucks the identifying column of the rows selected by the
// statement's WHERE clause. It runs on the statement's connection, so inside
// the write's transaction when there is one.
func whereIDs(tx *gorm.DB, fieldName string) ([]uint64, error) {
	stmt := tx.Statement
	field := stmt.Schema.LookUpField(fieldName)
	if field == nil {
		return nil, nil
	}
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return nil, nil
	}
	where, ok := c.Expression.(clause.Where)
	if !ok || len(where.Exprs) == 0 {
		return nil, nil
	}

	var ids []uint64
	err := tx.Session(&gorm.Session{NewDB: true}).
		Table(stmt.Schema.Table).
		Clauses(clause.Where{Exprs: where.Exprs}).
		Pluck(field.DBName, &ids).Error
	return ids, err
}

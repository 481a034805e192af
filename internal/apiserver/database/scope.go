package database

import (
	"strings"

	"github.com/anachak/anachak/internal/access"
	"gorm.io/gorm"
)

// OwnedBy restricts a query on table to rows the scope owns through user_id
func OwnedBy(scope access.Scope, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.Privileged() {
			return db
		}
		return db.Where(table+".user_id = ?", scope.UserID)
	}
}

// OwnedThroughShop restricts a query on table to rows whose shop the scope owns
func OwnedThroughShop(scope access.Scope, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.Privileged() {
			return db
		}
		owned := db.Session(&gorm.Session{NewDB: true}).
			Model(&Shop{}).
			Select("id").
			Where("user_id = ?", scope.UserID)
		return db.Where(table+".shop_id IN (?)", owned)
	}
}

// nameLike matches column against a case-insensitive substring
func nameLike(table, query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q := strings.TrimSpace(strings.ToLower(query))
		if q == "" {
			return db
		}
		return db.Where("LOWER("+table+".name) LIKE ? ESCAPE '!'", "%"+escapeLike(q)+"%")
	}
}

func activeOnly(table string, enabled bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !enabled {
			return db
		}
		return db.Where(table+".status = ?", true)
	}
}

func paginate(page access.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p := page.Normalize()
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	modeltrans "github.com/goliatone/go-modeltrans"
)

// Post is a translated record: title and body keep their default-language
// values in the base columns, every other language lives in the i18n bag.
type Post struct {
	bun.BaseModel `bun:"table:posts"`

	ID    uuid.UUID      `bun:"id,pk,type:uuid"`
	Title string         `bun:"title,notnull"`
	Body  string         `bun:"body"`
	I18n  modeltrans.Bag `bun:"i18n,type:jsonb"`
}

func main() {
	ctx := context.Background()

	cfg := modeltrans.DefaultConfig()
	cfg.AvailableLanguages = []string{"en", "nl", "de", "fr"}
	cfg.Fallback = map[string][]string{
		"default": {"en"},
		"fr":      {"nl", "en"},
	}

	module, err := modeltrans.New(cfg)
	if err != nil {
		log.Fatalf("configure module: %v", err)
	}

	model, err := module.Define(modeltrans.ModelConfig{
		Type: (*Post)(nil),
		Options: modeltrans.Options{
			Fields: []string{"title", "body"},
		},
		Ordering: []string{"title_i18n"},
	})
	if err != nil {
		log.Fatalf("define model: %v", err)
	}

	sqldb, err := sql.Open("sqlite3", "file:example?mode=memory&cache=shared&_fk=1")
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if _, err := db.NewCreateTable().Model((*Post)(nil)).IfNotExists().Exec(ctx); err != nil {
		log.Fatalf("create table: %v", err)
	}

	post := &Post{ID: uuid.New()}
	if err := model.ApplyValues(ctx, post, map[string]any{
		"title":    "Falcon",
		"title_nl": "Valk",
		"title_de": "Falke",
		"body":     "Birds of prey.",
	}); err != nil {
		log.Fatalf("apply values: %v", err)
	}
	if _, err := db.NewInsert().Model(post).Exec(ctx); err != nil {
		log.Fatalf("insert post: %v", err)
	}

	// French has no value, its chain falls back through Dutch before English.
	frCtx := modeltrans.WithLanguage(ctx, "fr")
	title, err := model.Read(frCtx, post, "title_i18n")
	if err != nil {
		log.Fatalf("read title: %v", err)
	}
	fmt.Printf("title in fr (via fallback): %s\n", *title)

	manager := module.Manager(db, model)
	q := manager.NewSelect(frCtx)
	q, err = manager.Where(frCtx, q, "title_i18n", "=", "Valk")
	if err != nil {
		log.Fatalf("build query: %v", err)
	}
	var matches []Post
	if err := q.Scan(frCtx, &matches); err != nil {
		log.Fatalf("run query: %v", err)
	}
	fmt.Printf("posts titled Valk under fr fallback: %d\n", len(matches))

	sqlText, args, err := manager.Expression(frCtx, "title_i18n", true)
	if err != nil {
		log.Fatalf("render expression: %v", err)
	}
	fmt.Printf("compiled lookup: %s %v\n", sqlText, args)
}

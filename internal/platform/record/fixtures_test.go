package record

import (
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
)

type note struct {
	Title  string `json:"title"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Parent *int64 `json:"parent"`
}

func (n note) Validate() error {
	var v Validator
	v.Required("title", n.Title)
	v.Email("email", n.Email)
	v.OneOf("status", n.Status, Choices{"Open", "Closed"})
	return v.Err()
}

type parent struct {
	Name string `json:"name"`
}

func (p parent) Validate() error {
	var v Validator
	v.Required("name", p.Name)
	return v.Err()
}

var parentDef = Definition[parent]{Kind: "parent", Table: "parents", Title: "Parent"}

func noteDef() Definition[note] {
	return Definition[note]{
		Kind:    "note",
		Table:   "notes",
		Title:   "Note",
		AllPath: "/all-notes",
		Unique:  []string{"email"},
		Filters: map[string]string{"parent": "parent"},
		References: []Reference[note]{
			Ref("parent", "parent", func(n note) *int64 { return n.Parent }),
		},
		Defaults: func(n *note) { n.Status = "Open" },
	}
}

var (
	adminA = access.Scope{TenantID: "a", Principal: access.Principal{UserID: 1, TenantID: "a", IsTenantAdmin: true}}
	userA2 = access.Scope{TenantID: "a", Principal: access.Principal{UserID: 2, TenantID: "a"}}
	userA3 = access.Scope{TenantID: "a", Principal: access.Principal{UserID: 3, TenantID: "a"}}
	adminB = access.Scope{TenantID: "b", Principal: access.Principal{UserID: 10, TenantID: "b", IsTenantAdmin: true}}
	// a platform superuser addressing tenant a through its host
	rootOnA = access.Scope{TenantID: "a", Principal: access.Principal{UserID: 99, IsSuperuser: true}}
)

type fixture struct {
	notes      *Service[note]
	parents    *Service[parent]
	noteStore  *MemoryStore[note]
	parentRepo *MemoryStore[parent]
}

func newFixture(t *testing.T, mutate func(*Definition[note])) *fixture {
	t.Helper()
	def := noteDef()
	if mutate != nil {
		mutate(&def)
	}
	reg := NewRegistry()
	f := &fixture{
		noteStore:  NewMemoryStore(def),
		parentRepo: NewMemoryStore(parentDef),
	}
	f.parents = NewService(parentDef, Store[parent](f.parentRepo), reg, NoTx{}, zerolog.Nop())
	f.notes = NewService(def, Store[note](f.noteStore), reg, NoTx{}, zerolog.Nop())
	return f
}

func mustCreate[T Payload](t *testing.T, svc *Service[T], scope access.Scope, body string) *Record[T] {
	t.Helper()
	rec, err := svc.Create(ctxBG, scope, []byte(body))
	if err != nil {
		t.Fatalf("create %s: %v", body, err)
	}
	return rec
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

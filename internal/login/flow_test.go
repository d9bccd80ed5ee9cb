package login

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/users"
	"github.com/dmitrijs2005/userforms/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	msgs []string
}

func (r *recorder) Notify(_ context.Context, msg string) {
	r.msgs = append(r.msgs, msg)
}

func record(name, email, pw string, fields ...models.FieldDefinition) models.UserRecord {
	if fields == nil {
		fields = []models.FieldDefinition{}
	}
	return models.UserRecord{Name: name, Email: email, Password: pw, Fields: fields}
}

var (
	team = models.FieldDefinition{Label: "Team", Type: "text"}
	age  = models.FieldDefinition{Label: "Age", Type: "number"}
)

func loadedFlow(t *testing.T, hasher password.Hasher, records ...models.UserRecord) *Flow {
	t.Helper()
	ctx := context.Background()

	repo := users.NewKVRepository(kv.NewMemoryRepository())
	for _, r := range records {
		_, err := repo.Append(ctx, r)
		require.NoError(t, err)
	}

	f := NewFlow(repo, hasher, logging.Nop())
	_, err := f.Load(ctx)
	require.NoError(t, err)
	return f
}

func TestDeriveFieldSchema_TwoUsers(t *testing.T) {
	schema := DeriveFieldSchema([]models.UserRecord{
		record("Ann", "ann@x.com", "secret1", team),
		record("Bob", "bob@x.com", "secret2", age),
	})

	assert.Equal(t, []models.DynamicField{
		{Label: "Team", Type: "text", ControlName: "dynamic_0"},
		{Label: "Age", Type: "number", ControlName: "dynamic_1"},
	}, schema)
}

func TestDeriveFieldSchema_Deduplicates(t *testing.T) {
	records := []models.UserRecord{
		record("Ann", "ann@x.com", "secret1", team, age),
		record("Bob", "bob@x.com", "secret2", age, team),
		record("Cy", "cy@x.com", "secret3", models.FieldDefinition{Label: "Team", Type: "number"}),
	}

	schema := DeriveFieldSchema(records)
	require.Len(t, schema, 3)
	assert.Equal(t, "Team", schema[0].Label)
	assert.Equal(t, "Age", schema[1].Label)
	assert.Equal(t, models.DynamicField{Label: "Team", Type: "number", ControlName: "dynamic_2"}, schema[2])

	assert.Equal(t, schema, DeriveFieldSchema(records))
}

func TestDeriveFieldSchema_Empty(t *testing.T) {
	schema := DeriveFieldSchema(nil)
	assert.NotNil(t, schema)
	assert.Empty(t, schema)
}

func TestFlow_LoadDerivesSchema(t *testing.T) {
	f := loadedFlow(t, password.Plain{},
		record("Ann", "ann@x.com", "secret1", team),
		record("Bob", "bob@x.com", "secret2", age),
	)

	s := f.Schema()
	require.Len(t, s, 2)
	assert.Equal(t, "dynamic_0", s[0].ControlName)
	assert.Equal(t, "dynamic_1", s[1].ControlName)
}

func TestFlow_LoadCorrupted(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryRepository()
	require.NoError(t, store.Set(ctx, users.StorageKey, []byte(`"x"`)))

	f := NewFlow(users.NewKVRepository(store), password.Plain{}, logging.Nop())
	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, common.ErrStoreCorrupted)
}

func TestFlow_Authenticate(t *testing.T) {
	ann := record("Ann", "ann@x.com", "secret1", team)
	f := loadedFlow(t, password.Plain{}, ann, record("Ann2", "ann@x.com", "other12"))

	tests := []struct {
		name     string
		email    string
		password string
		want     string
		wantErr  bool
	}{
		{name: "match", email: "ann@x.com", password: "secret1", want: "Ann"},
		{name: "second record with same email", email: "ann@x.com", password: "other12", want: "Ann2"},
		{name: "wrong password", email: "ann@x.com", password: "wrong", wantErr: true},
		{name: "unknown email", email: "zed@x.com", password: "secret1", wantErr: true},
		{name: "case sensitive email", email: "Ann@x.com", password: "secret1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := f.Authenticate(tt.email, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.Name)
		})
	}
}

func TestFlow_AuthenticateFirstMatchWins(t *testing.T) {
	f := loadedFlow(t, password.Plain{},
		record("First", "dup@x.com", "same12"),
		record("Second", "dup@x.com", "same12"),
	)

	u, err := f.Authenticate("dup@x.com", "same12")
	require.NoError(t, err)
	assert.Equal(t, "First", u.Name)
}

func TestFlow_AuthenticateArgon2(t *testing.T) {
	h := password.NewArgon2(password.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLength: 8, KeyLength: 16})
	hashed, err := h.Hash("secret1")
	require.NoError(t, err)

	f := loadedFlow(t, h, record("Ann", "ann@x.com", hashed))

	_, err = f.Authenticate("ann@x.com", "secret1")
	require.NoError(t, err)
	_, err = f.Authenticate("ann@x.com", hashed)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestFlow_AuthenticateDamagedArgon2Record(t *testing.T) {
	h := password.NewArgon2(password.DefaultArgon2Params)
	f := loadedFlow(t, h,
		record("Ann", "ann@x.com", "$argon2id$v=19$m=65536,t=1,p=0$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
	)

	require.NotPanics(t, func() {
		_, err := f.Authenticate("ann@x.com", "x")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})
}

func TestFlow_SubmitAnnScenario(t *testing.T) {
	ctx := context.Background()
	f := loadedFlow(t, password.Plain{}, record("Ann", "ann@x.com", "secret1", team))
	dyn := map[string]string{"dynamic_0": "blue"}

	n := &recorder{}
	u, err := f.Submit(ctx, LoginForm{Email: "ann@x.com", Password: "secret1", Dynamic: dyn}, n)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, []models.FieldDefinition{team}, u.Fields)

	_, err = f.Submit(ctx, LoginForm{Email: "ann@x.com", Password: "wrong", Dynamic: dyn}, n)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.Equal(t, []string{"Login successful!", "Invalid email or password."}, n.msgs)
}

func TestFlow_SubmitValidation(t *testing.T) {
	ctx := context.Background()
	f := loadedFlow(t, password.Plain{},
		record("Ann", "ann@x.com", "secret1", team),
		record("Bob", "bob@x.com", "secret2", age),
	)

	n := &recorder{}
	_, err := f.Submit(ctx, LoginForm{
		Email:    "ann",
		Password: "",
		Dynamic:  map[string]string{"dynamic_1": "42"},
	}, n)
	require.ErrorIs(t, err, common.ErrorValidation)

	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email", "ngemail"))
	assert.True(t, verr.Has("password", "required"))
	assert.True(t, verr.Has("dynamic.dynamic_0", "required"))
	assert.False(t, verr.Has("dynamic.dynamic_1", "required"))

	assert.Empty(t, n.msgs)
}

func TestFlow_SubmitIgnoresDynamicValues(t *testing.T) {
	f := loadedFlow(t, password.Plain{}, record("Ann", "ann@x.com", "secret1", team))

	u, err := f.Submit(context.Background(), LoginForm{
		Email:    "ann@x.com",
		Password: "secret1",
		Dynamic:  map[string]string{"dynamic_0": "anything at all"},
	}, NotifyFunc(func(context.Context, string) {}))
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
}

func TestFlow_SubmitAcceptsDotlessHost(t *testing.T) {
	f := loadedFlow(t, password.Plain{}, record("Ann", "ann@localhost", "secret1"))
	n := &recorder{}

	u, err := f.Submit(context.Background(), LoginForm{Email: "ann@localhost", Password: "secret1"}, n)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, []string{MessageSuccess}, n.msgs)
}

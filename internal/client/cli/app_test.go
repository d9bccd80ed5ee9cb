package cli

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/userforms/internal/client/config"
	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	repo *users.KVRepository
	out  *bytes.Buffer
}

func newTestApp(t *testing.T, lines ...string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil, nil)
	capturePrintln(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	repo := users.NewKVRepository(kv.NewMemoryRepository())
	out := &bytes.Buffer{}
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))

	return &testApp{
		App:  newApp(cfg, repo, password.Plain{}, logging.Nop(), r, out),
		repo: repo,
		out:  out,
	}
}

func (ta *testApp) stored(t *testing.T) []models.UserRecord {
	t.Helper()
	list, err := ta.repo.List(context.Background())
	require.NoError(t, err)
	return list
}

func seed(t *testing.T, ta *testApp, records ...models.UserRecord) {
	t.Helper()
	for _, r := range records {
		_, err := ta.repo.Append(context.Background(), r)
		require.NoError(t, err)
	}
	_, err := ta.signup.LoadAll(context.Background())
	require.NoError(t, err)
}

var (
	annRecord = models.UserRecord{Name: "Ann", Email: "ann@x.com", Password: "secret1",
		Fields: []models.FieldDefinition{{Label: "Team", Type: "text"}}}
	bobRecord = models.UserRecord{Name: "Bob", Email: "bob@x.com", Password: "secret2",
		Fields: []models.FieldDefinition{{Label: "Age", Type: "number"}}}
)

func TestApp_SignupAndLoginSession(t *testing.T) {
	ta := newTestApp(t,
		"signup", "Ann", "ann@x.com", "secret1", "Team:text", "",
		"login", "ann@x.com", "secret1", "blue",
		"login", "ann@x.com", "wrong1", "blue",
		"list",
		"exit",
	)

	runREPL(context.Background(), ta.App, ta.getStatus, ta.reader)

	assert.Equal(t, []models.UserRecord{annRecord}, ta.stored(t))
	assert.Contains(t, ta.out.String(), "Login successful!")
	assert.Contains(t, ta.out.String(), "Invalid email or password.")
	assert.Contains(t, ta.out.String(), "#1 Ann <ann@x.com> [Team:text]")

	require.NotNil(t, ta.current)
	assert.Equal(t, "ann@x.com", ta.current.Email)
	assert.Equal(t, "(ann@x.com) ", ta.getStatus())
}

func TestApp_SignupValidationFailure(t *testing.T) {
	ta := newTestApp(t, "Ann", "ann", "123", "")

	err := ta.Signup(context.Background())
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, ta.stored(t))
	assert.Empty(t, ta.signup.Draft().Password)
}

func TestApp_SignupOffersExistingFields(t *testing.T) {
	ta := newTestApp(t,
		"Cy", "cy@x.com", "secret3",
		"-",
		"",
		"Role:text",
		"",
	)
	seed(t, ta, annRecord, bobRecord)

	require.NoError(t, ta.Signup(context.Background()))

	list := ta.stored(t)
	require.Len(t, list, 3)
	assert.Equal(t, []models.FieldDefinition{
		{Label: "Age", Type: "number"},
		{Label: "Role", Type: "text"},
	}, list[2].Fields)
}

func TestApp_EditKeepsAndReplaces(t *testing.T) {
	ta := newTestApp(t,
		"Annie", "",
		"n",
		"Squad:text",
		"",
	)
	seed(t, ta, annRecord, bobRecord)

	require.NoError(t, ta.Edit(context.Background(), []string{"1"}))

	list := ta.stored(t)
	assert.Equal(t, models.UserRecord{
		Name:     "Annie",
		Email:    "ann@x.com",
		Password: "secret1",
		Fields:   []models.FieldDefinition{{Label: "Squad", Type: "text"}},
	}, list[0])
	assert.Equal(t, bobRecord, list[1])

	_, editing := ta.signup.EditingIndex()
	assert.False(t, editing)
}

func TestApp_EditFailureKeepsEditOpen(t *testing.T) {
	ta := newTestApp(t,
		"", "not-an-email", "n", "", "",
		"", "bob2@x.com", "y", "secret9", "", "",
	)
	seed(t, ta, annRecord, bobRecord)
	ctx := context.Background()

	err := ta.Edit(ctx, []string{"2"})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, "(editing #2) ", ta.getStatus())
	assert.Contains(t, ta.out.String(), "Edit of #2 kept")

	require.NoError(t, ta.Edit(ctx, nil))

	got := ta.stored(t)[1]
	assert.Equal(t, "bob2@x.com", got.Email)
	assert.Equal(t, "secret9", got.Password)
}

func TestApp_CancelEdit(t *testing.T) {
	ta := newTestApp(t)
	seed(t, ta, annRecord)
	ctx := context.Background()

	assert.ErrorIs(t, ta.CancelEdit(ctx), common.ErrNoEditInProgress)

	require.NoError(t, ta.signup.BeginEdit(ctx, 0))
	require.NoError(t, ta.CancelEdit(ctx))
	_, editing := ta.signup.EditingIndex()
	assert.False(t, editing)
}

func TestApp_Delete(t *testing.T) {
	ta := newTestApp(t, "n", "2", "yes")
	seed(t, ta, annRecord, bobRecord)
	ctx := context.Background()

	require.NoError(t, ta.Delete(ctx, []string{"1"}))
	assert.Len(t, ta.stored(t), 2)
	assert.Contains(t, ta.out.String(), "Kept.")

	require.NoError(t, ta.Delete(ctx, nil))
	assert.Equal(t, []models.UserRecord{annRecord}, ta.stored(t))

	assert.ErrorIs(t, ta.Delete(ctx, []string{"5"}), common.ErrIndexOutOfRange)
	assert.ErrorIs(t, ta.Delete(ctx, []string{"x"}), errBadIndex)
}

func TestApp_ClearAndFields(t *testing.T) {
	ta := newTestApp(t)
	seed(t, ta, annRecord, bobRecord)
	ctx := context.Background()

	require.NoError(t, ta.Fields(ctx))
	assert.Contains(t, ta.out.String(), "dynamic_0  Team (text)")
	assert.Contains(t, ta.out.String(), "dynamic_1  Age (number)")

	require.NoError(t, ta.Clear(ctx))
	assert.Empty(t, ta.stored(t))

	ta.out.Reset()
	require.NoError(t, ta.Fields(ctx))
	assert.Equal(t, "No custom fields.\n", ta.out.String())
}

func TestApp_LoginRequiresDynamicFields(t *testing.T) {
	ta := newTestApp(t, "ann@x.com", "secret1", "", "")
	seed(t, ta, annRecord, bobRecord)

	err := ta.Login(context.Background())
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Nil(t, ta.current)
	assert.NotContains(t, ta.out.String(), "Login")
}

func TestApp_WithTimeout(t *testing.T) {
	a := &App{config: &config.Config{OpTimeout: time.Minute}}
	ctx, cancel := a.withTimeout(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	a.config.OpTimeout = 0
	ctx2, cancel2 := a.withTimeout(context.Background())
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.False(t, ok)
}

func TestNewApp_SQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DSN = filepath.Join(t.TempDir(), "users.db")

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, a.closer)
	require.NoError(t, a.closer.Close())
}

func TestNewApp_Errors(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	cfg.Hasher = "md5"
	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)

	cfg.Hasher = "plain"
	cfg.Backend = "floppy"
	_, err = NewApp(context.Background(), cfg)
	require.ErrorIs(t, err, common.ErrUnknownBackend)
}

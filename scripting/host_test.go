/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/dynascript/datastore/mock"
	"github.com/suparena/dynascript/engine"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
	"github.com/suparena/dynascript/uibridge"
)

const prelude = `
const session = require("dynascript").session;
const ui = require("dynascript").ui;
`

var inventory = &resultset.Table{
	Name:           "inventory",
	Keys:           resultset.KeyAttribute{PartitionKey: "pk"},
	AttributeTypes: map[string]resultset.AttributeType{"pk": resultset.TypeString},
}

func item(pk, address string) resultset.Item {
	return resultset.Item{
		"pk":      &types.AttributeValueMemberS{Value: pk},
		"address": &types.AttributeValueMemberS{Value: address},
	}
}

func inventoryStore() *mock.Store {
	return mock.New().WithTable(inventory,
		item("01", "1 Main St."),
		item("02", "2 Main St."),
		item("10", "10 Main St."),
	)
}

type testSession struct {
	engine  *engine.Engine
	current atomic.Pointer[resultset.ResultSet]
}

func (s *testSession) Query(ctx context.Context, expression string, opts engine.Options) *pending.Op[*resultset.ResultSet] {
	return s.engine.Query(ctx, expression, opts)
}

func (s *testSession) Persist(ctx context.Context, rs *resultset.ResultSet) *pending.Op[int] {
	return s.engine.Persist(ctx, rs)
}

func (s *testSession) CurrentResultSet() *resultset.ResultSet {
	return s.current.Load()
}

func (s *testSession) SetCurrentResultSet(rs *resultset.ResultSet) {
	s.current.Store(rs)
}

// recordingSink acknowledges alerts and errors and answers prompts from a
// queue, cancelling once the queue is empty.
type recordingSink struct {
	mu       sync.Mutex
	shown    map[uibridge.Kind][]string
	status   []string
	answers  []string
	prompted int
}

func (s *recordingSink) Status(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = append(s.status, message)
}

func (s *recordingSink) statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.status...)
}

func (s *recordingSink) Show(req *uibridge.Request) {
	s.mu.Lock()
	if s.shown == nil {
		s.shown = make(map[uibridge.Kind][]string)
	}
	s.shown[req.Kind] = append(s.shown[req.Kind], req.Message)

	var answer string
	answered := false
	if req.Kind == uibridge.KindPrompt && len(s.answers) > 0 {
		answer, s.answers = s.answers[0], s.answers[1:]
		answered = true
	}
	s.mu.Unlock()

	switch {
	case answered:
		req.Answer(answer)
	case req.Kind == uibridge.KindPrompt:
		req.Cancel()
	default:
		req.Ack()
	}
}

func (s *recordingSink) messages(kind uibridge.Kind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.shown[kind]...)
}

type testEnv struct {
	host    *Host
	session *testSession
	sink    *recordingSink
	store   *mock.Store
}

func newTestEnv(t *testing.T, store *mock.Store, files map[string]string, queryOpts []storagemodels.QueryOption, hostOpts ...Option) *testEnv {
	t.Helper()

	base := []storagemodels.QueryOption{
		storagemodels.WithTimeout(time.Second),
		storagemodels.WithRetryBackoff(time.Millisecond),
	}
	e := engine.New(store, engine.WithQueryOptions(append(base, queryOpts...)...))
	sink := &recordingSink{}
	bridge := uibridge.New(sink)
	session := &testSession{engine: e}

	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}

	opts := append([]Option{WithLookupDirs(fsys), WithExecLimit(time.Second)}, hostOpts...)
	host := New(session, bridge, opts...)

	t.Cleanup(func() {
		host.Close()
		bridge.Close()
		e.Close()
	})
	return &testEnv{host: host, session: session, sink: sink, store: store}
}

func (env *testEnv) load(t *testing.T, names ...string) {
	t.Helper()
	require.NoError(t, env.host.LoadScripts(context.Background(), names...))
}

func (env *testEnv) invoke(t *testing.T, name string) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := env.host.Invoke(context.Background(), name).Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "command %s did not settle", name)
	return err
}

func TestUnknownCommandNeverRuns(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"cmds.js": prelude + `
session.registerCommand("hello", () => ui.alert("hello"));
`,
	}, nil)
	env.load(t, "cmds.js")

	err := env.invoke(t, "bla")
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand), "got %v", err)
	assert.Empty(t, env.sink.messages(uibridge.KindAlert))

	require.NoError(t, env.invoke(t, "hello"))
	assert.Equal(t, []string{"hello"}, env.sink.messages(uibridge.KindAlert))
}

func TestReRegistrationReplacesCallback(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"first.js":  prelude + `session.registerCommand("greet", () => ui.alert("first"));`,
		"second.js": prelude + `session.registerCommand("greet", () => ui.alert("second"));`,
	}, nil)
	env.load(t, "first.js", "second.js")

	require.NoError(t, env.invoke(t, "greet"))
	assert.Equal(t, []string{"second"}, env.sink.messages(uibridge.KindAlert))
	assert.Equal(t, []string{"greet"}, env.host.Commands())

	cmd, ok := env.host.Command("greet")
	require.True(t, ok)
	assert.Equal(t, "second.js", cmd.Script)
}

func TestQueryAndReplaceResultSet(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"testscript.js": prelude + `
session.registerCommand("bla", () => {
    return session.query('pk^="0"', { table: "inventory" }).then(rs => {
        session.currentResultSet = rs;
        return ui.alert("Length: " + rs.rows.length);
    });
});
`,
	}, nil)
	env.load(t, "testscript")

	require.NoError(t, env.invoke(t, "bla"))
	assert.Equal(t, []string{"Length: 2"}, env.sink.messages(uibridge.KindAlert))

	current := env.session.CurrentResultSet()
	require.NotNil(t, current)
	assert.Equal(t, 2, current.Len())
	assert.Equal(t, `pk^="0"`, current.Expression())
}

func TestContinuationKeepsCapturedResultSet(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"swap.js": prelude + `
session.registerCommand("swap", () => {
    return session.query('pk="01"', { table: "inventory" }).then(first => {
        session.currentResultSet = first;
        return session.query('pk="10"', { table: "inventory" }).then(second => {
            const captured = session.currentResultSet;
            session.currentResultSet = second;
            return ui.alert(captured.rows[0].item.pk + "," + session.currentResultSet.rows[0].item.pk);
        });
    });
});
`,
	}, nil)
	env.load(t, "swap.js")

	require.NoError(t, env.invoke(t, "swap"))
	assert.Equal(t, []string{"01,10"}, env.sink.messages(uibridge.KindAlert))
}

func TestSynchronousRunsDoNotInterleave(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"trace.js": prelude + `
const trace = [];
session.registerCommand("a", () => {
    trace.push("a:start");
    for (let i = 0; i < 10000; i++) {}
    trace.push("a:end");
});
session.registerCommand("b", () => {
    trace.push("b:start");
    trace.push("b:end");
});
session.registerCommand("dump", () => ui.alert(trace.join(",")));
`,
	}, nil)
	env.load(t, "trace.js")

	ops := make([]*pending.Op[struct{}], 2)
	var wg sync.WaitGroup
	for i, name := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			ops[i] = env.host.Invoke(context.Background(), name)
		}(i, name)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, op := range ops {
		_, err := op.Wait(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, env.invoke(t, "dump"))
	alerts := env.sink.messages(uibridge.KindAlert)
	require.Len(t, alerts, 1)
	assert.Contains(t, []string{
		"a:start,a:end,b:start,b:end",
		"b:start,b:end,a:start,a:end",
	}, alerts[0])
}

func TestSameCommandRunsOneAtATime(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"seq.js": prelude + `
const trace = [];
let n = 0;
session.registerCommand("seq", () => {
    const id = ++n;
    trace.push("start" + id);
    return session.query('pk^="0"', { table: "inventory" }).then(() => { trace.push("end" + id); });
});
session.registerCommand("dump", () => ui.alert(trace.join(",")));
`,
	}, nil)
	env.load(t, "seq.js")

	first := env.host.Invoke(context.Background(), "seq")
	second := env.host.Invoke(context.Background(), "seq")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := first.Wait(ctx)
	require.NoError(t, err)
	_, err = second.Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, env.invoke(t, "dump"))
	assert.Equal(t, []string{"start1,end1,start2,end2"}, env.sink.messages(uibridge.KindAlert))
}

func TestFailedCommandHoldsSlotUntilChainCompletes(t *testing.T) {
	tests := []struct {
		name string
		fail string
		kind string
	}{
		{name: "Thrown", fail: `throw new Error("boom" + id);`, kind: "Error"},
		{name: "Accessor", fail: `session.currentResultSet = 5;`, kind: "TypeMismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, inventoryStore(), map[string]string{
				"fail.js": prelude + `
const trace = [];
let n = 0;
session.registerCommand("fail", () => {
    const id = ++n;
    trace.push("start" + id);
    session.query('pk^="0"', { table: "inventory" }).then(rs => {
        session.currentResultSet = rs;
        trace.push("end" + id);
        if (id === 2) {
            return ui.alert(trace.join(","));
        }
    });
    ` + tt.fail + `
});
`,
			}, nil)
			env.load(t, "fail.js")

			first := env.host.Invoke(context.Background(), "fail")
			second := env.host.Invoke(context.Background(), "fail")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := first.Wait(ctx)
			assert.Equal(t, tt.kind, errors.KindOf(err), "got %v", err)
			_, err = second.Wait(ctx)
			assert.Equal(t, tt.kind, errors.KindOf(err), "got %v", err)

			assert.Eventually(t, func() bool {
				return len(env.sink.messages(uibridge.KindAlert)) == 1
			}, 5*time.Second, 10*time.Millisecond)
			assert.Equal(t, []string{"start1,end1,start2,end2"}, env.sink.messages(uibridge.KindAlert))
		})
	}
}

func TestKeyWriteOnPersistedRowIsRejected(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"rekey.js": prelude + `
session.registerCommand("rekey", () => {
    return session.query('pk="01"', { table: "inventory" }).then(rs => {
        rs.rows[0].item.pk = "99";
        session.currentResultSet = rs;
    });
});
`,
	}, nil)
	env.load(t, "rekey.js")

	err := env.invoke(t, "rekey")
	assert.True(t, errors.Is(err, errors.ErrReadOnlyKey), "got %v", err)

	rs := env.session.CurrentResultSet()
	require.NotNil(t, rs)
	v, _ := rs.Row(0).Get("pk")
	assert.Equal(t, "01", v.(*types.AttributeValueMemberS).Value)
	assert.False(t, rs.Row(0).Modified())

	assert.Eventually(t, func() bool {
		errs := env.sink.messages(uibridge.KindError)
		return len(errs) == 1 && strings.HasPrefix(errs[0], "ReadOnlyKey:")
	}, time.Second, 10*time.Millisecond)
}

func TestCurrentResultSetRejectsOtherValues(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"bad.js": prelude + `
session.registerCommand("bad", () => {
    session.currentResultSet = "nope";
    return ui.alert(String(session.currentResultSet));
});
`,
	}, nil)
	env.load(t, "bad.js")

	err := env.invoke(t, "bad")
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch), "got %v", err)
	assert.Nil(t, env.session.CurrentResultSet())
}

func TestRejections(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"errs.js": prelude + `
session.registerCommand("unhandled", () => {
    session.query('pk="1"', { table: "missing" }).then(() => ui.alert("never"));
});
session.registerCommand("handled", () => {
    return session.query('pk="1"', { table: "missing" }).catch(e => ui.alert(e.kind + ": " + e.message));
});
session.registerCommand("thrown", () => {
    throw new Error("boom");
});
session.registerCommand("missingTable", () => {
    return session.query('pk="1"').catch(e => ui.alert(e.kind));
});
`,
	}, nil)
	env.load(t, "errs.js")

	t.Run("Unhandled", func(t *testing.T) {
		err := env.invoke(t, "unhandled")
		assert.True(t, errors.IsTableNotFound(err), "got %v", err)
		assert.Eventually(t, func() bool {
			for _, msg := range env.sink.messages(uibridge.KindError) {
				if strings.HasPrefix(msg, "TableNotFound:") {
					return true
				}
			}
			return false
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Handled", func(t *testing.T) {
		require.NoError(t, env.invoke(t, "handled"))
		assert.Contains(t, env.sink.messages(uibridge.KindAlert), `TableNotFound: table "missing" not found`)
	})

	t.Run("Thrown", func(t *testing.T) {
		err := env.invoke(t, "thrown")
		var scriptErr *ScriptError
		require.ErrorAs(t, err, &scriptErr)
		assert.Contains(t, scriptErr.Message, "boom")
	})

	t.Run("MissingOption", func(t *testing.T) {
		require.NoError(t, env.invoke(t, "missingTable"))
		assert.Contains(t, env.sink.messages(uibridge.KindAlert), "MissingOption")
	})
}

func TestRowReferencesAndClones(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"share.js": prelude + `
session.registerCommand("share", () => session.query('pk^="0"', { table: "inventory" }).then(rs => {
    const a = rs.rows[0];
    const b = rs.rows[0];
    const c = rs.rows[0].clone();
    a.item.address = "changed";
    c.item.address = "snapshot";
    session.currentResultSet = rs;
    return ui.alert([b.item.address, c.item.address, rs.rows[0].modified, rs.rows[1].modified].join(","));
}));
`,
	}, nil)
	env.load(t, "share.js")

	require.NoError(t, env.invoke(t, "share"))
	assert.Equal(t, []string{"changed,snapshot,true,false"}, env.sink.messages(uibridge.KindAlert))
}

func TestPromptAndPersist(t *testing.T) {
	store := inventoryStore()
	env := newTestEnv(t, store, map[string]string{
		"edit.js": prelude + `
session.registerCommand("edit", () => {
    return session.query('pk="02"', { table: "inventory" }).then(rs => {
        session.currentResultSet = rs;
        return ui.prompt("New address?");
    }).then(address => {
        session.currentResultSet.rows[0].item.address = address;
        return session.persist();
    }).then(n => ui.alert("Saved " + n), e => ui.alert(e.kind));
});
`,
	}, nil)
	env.load(t, "edit.js")

	env.sink.answers = []string{"123 Fake St."}
	require.NoError(t, env.invoke(t, "edit"))
	assert.Equal(t, []string{"Saved 1"}, env.sink.messages(uibridge.KindAlert))

	items := store.Items("inventory")
	require.Len(t, items, 3)
	assert.Equal(t, "123 Fake St.", items[1]["address"].(*types.AttributeValueMemberS).Value)
	assert.False(t, env.session.CurrentResultSet().Row(0).Modified())

	// No answer queued: the prompt is cancelled.
	require.NoError(t, env.invoke(t, "edit"))
	assert.Equal(t, []string{"Saved 1", "Cancelled"}, env.sink.messages(uibridge.KindAlert))
}

func TestQueryTimeoutSurfaces(t *testing.T) {
	store := inventoryStore().WithPageErrors(mock.Hang, mock.Hang)
	env := newTestEnv(t, store, map[string]string{
		"slow.js": prelude + `
session.registerCommand("slow", () => session.query('pk^="0"', { table: "inventory" }).catch(e => ui.alert(e.kind)));
`,
	}, []storagemodels.QueryOption{storagemodels.WithTimeout(20 * time.Millisecond)})
	env.load(t, "slow.js")

	require.NoError(t, env.invoke(t, "slow"))
	assert.Equal(t, []string{"Timeout"}, env.sink.messages(uibridge.KindAlert))
	assert.Equal(t, int64(2), store.Calls().Page)
}

func TestExecLimitInterruptsScript(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"spin.js": prelude + `
session.registerCommand("spin", () => { while (true) {} });
session.registerCommand("ok", () => ui.alert("still alive"));
`,
	}, nil, WithExecLimit(50*time.Millisecond))
	env.load(t, "spin.js")

	err := env.invoke(t, "spin")
	assert.True(t, errors.IsTimeout(err), "got %v", err)

	require.NoError(t, env.invoke(t, "ok"))
	assert.Equal(t, []string{"still alive"}, env.sink.messages(uibridge.KindAlert))
}

func TestRequireIsLimitedToLookupDirs(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"lib/greeting.js": `module.exports = (name) => "hello " + name;`,
		"main.js": prelude + `
const greeting = require("./lib/greeting");
session.registerCommand("greet", () => ui.alert(greeting("world")));
`,
		"escape.js": `require("../../etc/passwd");`,
	}, nil)

	env.load(t, "main.js")
	require.NoError(t, env.invoke(t, "greet"))
	assert.Equal(t, []string{"hello world"}, env.sink.messages(uibridge.KindAlert))

	assert.Error(t, env.host.LoadScript(context.Background(), "escape.js"))
	assert.Error(t, env.host.LoadScript(context.Background(), "nothere.js"))
}

func TestPrintAndAlertJoinArguments(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"cmds.js": prelude + `
session.registerCommand("report", () => {
	ui.print("rows: ", 3);
	return ui.alert("saved ", 2, " of ", 3, " ", true);
});
`,
	}, nil)
	env.load(t, "cmds.js")

	require.NoError(t, env.invoke(t, "report"))
	assert.Equal(t, []string{"rows: 3"}, env.sink.statuses())
	assert.Equal(t, []string{"saved 2 of 3 true"}, env.sink.messages(uibridge.KindAlert))
}

const osScript = prelude + `
const os = require("dynascript/os");

session.registerCommand("system", () => os.system("echo", "hello", ["from", "echo"]).then(out => ui.alert(out.trim())));
session.registerCommand("exec", () => os.exec("echo abc | tr a x").then(out => ui.alert(out.trim())));
session.registerCommand("fail", () => os.exec("echo oops >&2; exit 3"));
session.registerCommand("env", () => {
	try {
		ui.alert(os.env("DYNASCRIPT_SCRIPT_VAR"), "/", String(os.env("DYNASCRIPT_UNSET_VAR")));
	} catch (e) {
		ui.alert(e.kind);
	}
});
`

func TestOSModuleIsDeniedByDefault(t *testing.T) {
	t.Setenv("DYNASCRIPT_SCRIPT_VAR", "visible")
	env := newTestEnv(t, inventoryStore(), map[string]string{"os.js": osScript}, nil)
	env.load(t, "os.js")

	for _, name := range []string{"system", "exec"} {
		err := env.invoke(t, name)
		assert.True(t, errors.Is(err, errors.ErrPermissionDenied), "%s: got %v", name, err)
	}

	require.NoError(t, env.invoke(t, "env"))
	assert.Equal(t, []string{"PermissionDenied"}, env.sink.messages(uibridge.KindAlert))
}

func TestOSModuleRunsPermittedCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	t.Setenv("DYNASCRIPT_SCRIPT_VAR", "visible")
	env := newTestEnv(t, inventoryStore(), map[string]string{"os.js": osScript}, nil,
		WithPermissions(Permissions{AllowShellCommands: true, AllowEnv: true}))
	env.load(t, "os.js")

	require.NoError(t, env.invoke(t, "system"))
	require.NoError(t, env.invoke(t, "exec"))
	require.NoError(t, env.invoke(t, "env"))
	assert.Equal(t, []string{"hello from echo", "xbc", "visible/undefined"}, env.sink.messages(uibridge.KindAlert))

	err := env.invoke(t, "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestCloseRejectsNewWork(t *testing.T) {
	env := newTestEnv(t, inventoryStore(), map[string]string{
		"cmds.js": prelude + `session.registerCommand("hello", () => ui.alert("hello"));`,
	}, nil)
	env.load(t, "cmds.js")

	env.host.Close()

	err := env.invoke(t, "hello")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, env.host.LoadScript(context.Background(), "cmds.js"), ErrClosed)
}

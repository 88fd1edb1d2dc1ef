package gh

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   [][]string
	outputs map[string][]byte
	errs    map[string]error
}

// key is the gh subcommand pair, e.g. "pr list"
func (f *fakeRunner) run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	key := strings.Join(args[:2], " ")
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.outputs[key], nil
}

const listOutput = `[
  {"number": 12, "title": "Add parser", "url": "https://github.com/o/r/pull/12", "state": "OPEN", "isDraft": true,
   "headRefName": "alice/add-parser", "baseRefName": "main", "headRefOid": "aaa111",
   "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-02T00:00:00Z"},
  {"number": 13, "title": "Wire parser", "url": "https://github.com/o/r/pull/13", "state": "OPEN", "isDraft": false,
   "headRefName": "alice/wire-parser", "baseRefName": "alice/add-parser", "headRefOid": "bbb222",
   "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-02T00:00:00Z"}
]`

func TestListOpenPRs(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"pr list": []byte(listOutput)}}
	client := NewClientWithRunner(runner.run)

	prs, err := client.ListOpenPRs(context.Background())
	require.NoError(t, err)
	require.Len(t, prs, 2)

	assert.Equal(t, 12, prs[0].Number)
	assert.Equal(t, StateDraft, prs[0].State)
	assert.Equal(t, "alice/add-parser", prs[0].Head)
	assert.Equal(t, "main", prs[0].Base)
	assert.Equal(t, "aaa111", prs[0].HeadOID)
	assert.Equal(t, StateOpen, prs[1].State)
	assert.Equal(t, "alice/add-parser", prs[1].Base)

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "@me")
	assert.Contains(t, runner.calls[0], prFields)
}

func TestGetPR_UnknownStateIsRejected(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{
		"pr view": []byte(`{"number": 7, "state": "LOCKED"}`),
	}}
	client := NewClientWithRunner(runner.run)

	_, err := client.GetPR(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCKED")
}

func TestCreatePR(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{
		"pr create": []byte("https://github.com/o/r/pull/12\n"),
		"pr list":   []byte(listOutput),
	}}
	client := NewClientWithRunner(runner.run)

	pr, err := client.CreatePR(context.Background(), PRSpec{
		Title: "Add parser",
		Body:  "body",
		Base:  "main",
		Head:  "alice/add-parser",
		Draft: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, pr.Number)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{
		"pr", "create",
		"--title", "Add parser",
		"--body", "body",
		"--base", "main",
		"--head", "alice/add-parser",
		"--draft",
	}, runner.calls[0])
}

func TestCreatePR_AlreadyExistsRecovers(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string][]byte{"pr list": []byte(listOutput)},
		errs:    map[string]error{"pr create": errors.New("gh CLI error: a pull request for branch \"alice/add-parser\" already exists")},
	}
	client := NewClientWithRunner(runner.run)

	pr, err := client.CreatePR(context.Background(), PRSpec{Head: "alice/add-parser", Base: "main"})
	require.NoError(t, err)
	assert.Equal(t, 12, pr.Number)
}

func TestCreatePR_OtherErrorsAreFatal(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"pr create": errors.New("gh CLI error: HTTP 422")}}
	client := NewClientWithRunner(runner.run)

	_, err := client.CreatePR(context.Background(), PRSpec{Head: "alice/x", Base: "main"})
	require.Error(t, err)
	assert.Len(t, runner.calls, 1)
}

func TestMergePR(t *testing.T) {
	tests := []struct {
		name     string
		opts     MergeOptions
		expected []string
	}{
		{
			name:     "default method is squash",
			opts:     MergeOptions{},
			expected: []string{"pr", "merge", "5", "--squash"},
		},
		{
			name:     "rebase and delete branch",
			opts:     MergeOptions{Method: MergeRebase, DeleteBranch: true},
			expected: []string{"pr", "merge", "5", "--rebase", "--delete-branch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			client := NewClientWithRunner(runner.run)

			require.NoError(t, client.MergePR(context.Background(), 5, tt.opts))
			require.Len(t, runner.calls, 1)
			assert.Equal(t, tt.expected, runner.calls[0])
		})
	}
}

func TestUpdatePRBase(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClientWithRunner(runner.run)

	require.NoError(t, client.UpdatePRBase(context.Background(), 9, "main"))
	assert.Equal(t, []string{"pr", "edit", "9", "--base", "main"}, runner.calls[0])
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		state    string
		isDraft  bool
		expected State
	}{
		{"OPEN", false, StateOpen},
		{"OPEN", true, StateDraft},
		{"MERGED", false, StateMerged},
		{"CLOSED", true, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			state, err := normalizeState(tt.state, tt.isDraft)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestParseMergeMethod(t *testing.T) {
	m, err := ParseMergeMethod("Squash")
	require.NoError(t, err)
	assert.Equal(t, MergeSquash, m)

	_, err = ParseMergeMethod("octopus")
	assert.Error(t, err)
}

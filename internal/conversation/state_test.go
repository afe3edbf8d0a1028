package conversation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMessageMustBePrompt(t *testing.T) {
	c := New()
	err := c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{{ToolUseID: "t1"}}})
	assert.ErrorIs(t, err, ErrFirstMessageMustBePrompt)

	err = c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "hello"})
	require.NoError(t, err)
}

func TestAppendAssistantRequiresLeadingUser(t *testing.T) {
	c := New()
	err := c.AppendAssistant(AssistantMessage{ContentText: "hi"})
	assert.ErrorIs(t, err, ErrFirstMessageMustBePrompt)
}

func TestSimpleChatNoTools(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "hello"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ContentText: "hi there"}))

	require.Len(t, c.Messages, 2)
	assert.Equal(t, "hello", c.Messages[0].User.Prompt)
	assert.Equal(t, "hi there", c.Messages[1].Assistant.ContentText)
	assert.NoError(t, Validate(c))
}

func TestSingleToolDispatchSatisfiesC1(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "list files"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: []ToolUseBlock{
		{ID: "t1", Name: "fs_read", Args: []byte(`{"mode":"Directory","path":"."}`)},
	}}))
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{
		{ToolUseID: "t1", Status: StatusOK, Content: []ContentPart{TextContent("a"), TextContent("b")}},
	}}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ContentText: "I saw a, b."}))

	require.Len(t, c.Messages, 4)
	assert.NoError(t, Validate(c))
}

func TestMismatchedResultIDsRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "go"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: []ToolUseBlock{{ID: "t1", Name: "fs_read"}}}))

	err := c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{{ToolUseID: "wrong"}}})
	assert.ErrorIs(t, err, ErrToolResultIDMismatch)
}

func TestOutOfOrderResultIDsRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "go"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: []ToolUseBlock{
		{ID: "t1"}, {ID: "t2"},
	}}))
	err := c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{
		{ToolUseID: "t2"}, {ToolUseID: "t1"},
	}})
	assert.ErrorIs(t, err, ErrToolResultIDMismatch)
}

func TestUnexpectedToolResultRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "go"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ContentText: "no tools here"}))
	err := c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{{ToolUseID: "t1"}}})
	assert.ErrorIs(t, err, ErrUnexpectedToolResult)
}

func TestCancellationCoalescesWithPriorToolResult(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "go"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: []ToolUseBlock{
		{ID: "t1"}, {ID: "t2"},
	}}))
	// t1 completes normally...
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{
		{ToolUseID: "t1", Status: StatusOK},
	}}))
	// ...then the user cancels before t2 finishes. Per C3 this must coalesce
	// into the same user message rather than create a second consecutive one.
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindCancelledToolUses, Results: []ToolResultBlock{
		{ToolUseID: "t2", Status: StatusError},
	}}))

	require.Len(t, c.Messages, 3, "cancellation must coalesce, not append a new message")
	assert.Equal(t, KindCancelledToolUses, c.Messages[2].User.Kind)
	assert.Equal(t, []string{"t1", "t2"}, []string{
		c.Messages[2].User.Results[0].ToolUseID,
		c.Messages[2].User.Results[1].ToolUseID,
	})
	assert.NoError(t, Validate(c))
}

func TestEmptyPromptAfterToolResultRejected(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "go"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ContentText: "ok"}))
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "again"}))
	require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: []ToolUseBlock{{ID: "t1"}}}))
	require.NoError(t, c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: []ToolResultBlock{{ToolUseID: "t1"}}}))

	err := c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: ""})
	assert.ErrorIs(t, err, ErrEmptyPromptAfterToolResult)
}

// TestC1PropertyRandomToolUseSequences generates random tool-use sequences
// and asserts the resulting conversation always satisfies C1.
func TestC1PropertyRandomToolUseSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		c := New()
		require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "start"}))

		n := rng.Intn(5)
		var uses []ToolUseBlock
		for i := 0; i < n; i++ {
			uses = append(uses, ToolUseBlock{ID: randID(rng, i)})
		}
		require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: uses}))

		if n > 0 {
			results := make([]ToolResultBlock, n)
			for i, u := range uses {
				status := StatusOK
				if rng.Intn(2) == 0 {
					status = StatusError
				}
				results[i] = ToolResultBlock{ToolUseID: u.ID, Status: status}
			}
			require.NoError(t, c.AppendUser(UserMessage{Kind: KindToolUseResults, Results: results}))
		}
		require.NoError(t, c.AppendAssistant(AssistantMessage{ContentText: "done"}))

		assert.NoError(t, Validate(c))
	}
}

// TestC3CoalescingNeverLeavesConsecutiveResultMessages drives interleaved
// cancellations and asserts no two consecutive ToolUseResults/
// CancelledToolUses messages ever appear.
func TestC3CoalescingNeverLeavesConsecutiveResultMessages(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		c := New()
		require.NoError(t, c.AppendUser(UserMessage{Kind: KindPrompt, Prompt: "start"}))
		uses := []ToolUseBlock{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
		require.NoError(t, c.AppendAssistant(AssistantMessage{ToolUses: uses}))

		// Split results across multiple coalescing appends, as a cancellation
		// mid-batch would.
		for _, u := range uses {
			kind := KindToolUseResults
			if rng.Intn(3) == 0 {
				kind = KindCancelledToolUses
			}
			require.NoError(t, c.AppendUser(UserMessage{Kind: kind, Results: []ToolResultBlock{
				{ToolUseID: u.ID, Status: StatusOK},
			}}))
		}

		for i := 1; i < len(c.Messages); i++ {
			prev, cur := c.Messages[i-1], c.Messages[i]
			if prev.Role == RoleUser && cur.Role == RoleUser {
				assert.Fail(t, "consecutive user messages must not both be tool-result kinds",
					"trial %d: prev=%v cur=%v", trial, prev.User.Kind, cur.User.Kind)
			}
		}
		assert.NoError(t, Validate(c))
	}
}

func randID(rng *rand.Rand, i int) string {
	return "t" + string(rune('a'+rng.Intn(26))) + string(rune('0'+i))
}

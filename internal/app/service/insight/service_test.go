package insightsvc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/flocklabs/flockhub/internal/domain/models"
	"go.uber.org/zap"
)

type stubGenerator struct {
	out string
	err error
}

func (s stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return s.out, s.err
}

func TestMemberInsightFallback(t *testing.T) {
	ctx := context.Background()
	m := models.Member{FirstName: "Jane"}

	s := New(stubGenerator{err: errors.New("backend down")}, zap.NewNop())
	if got := s.MemberInsight(ctx, m); got != FallbackText {
		t.Fatalf("error should yield fallback, got %q", got)
	}

	s = New(stubGenerator{out: "   "}, zap.NewNop())
	if got := s.MemberInsight(ctx, m); got != FallbackText {
		t.Fatalf("blank output should yield fallback, got %q", got)
	}
}

func TestMemberInsightSanitizesHTML(t *testing.T) {
	s := New(stubGenerator{out: `<h1>Spiritual Advice</h1><script>alert(1)</script><p>Pray daily.</p>`}, zap.NewNop())
	got := s.MemberInsight(context.Background(), models.Member{FirstName: "Jane"})

	if strings.Contains(got, "<script>") {
		t.Fatalf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "Pray daily.") {
		t.Fatalf("content lost: %q", got)
	}
}

func TestBuildMemberPromptFields(t *testing.T) {
	baptism := models.NewDate(2020, 6, 14)
	m := models.Member{
		FirstName:   "Jane",
		LastName:    "Doe",
		Ministry:    "choir",
		Status:      models.StatusMember,
		BaptismDate: &baptism,
		Notes:       []models.MemberNote{{Note: "asked for prayer"}, {Note: "new job"}},
	}
	prompt := buildMemberPrompt(m)

	for _, want := range []string{
		"help Jane grow spiritually",
		"Name: Jane Doe",
		"Ministry: choir",
		"Baptism Date: 2020-06-14",
		"Notes: asked for prayer; new job",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Empty fields stay out entirely.
	if strings.Contains(prompt, "Occupation:") || strings.Contains(prompt, "Gender:") {
		t.Errorf("prompt contains empty fields")
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()

	s := New(stubGenerator{out: "Faith, Community , , growth, prayer, hope, extra"}, zap.NewNop())
	got := s.Tags(ctx, "some text", "")
	want := []string{"faith", "community", "growth", "prayer", "hope"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}

	s = New(stubGenerator{err: errors.New("down")}, zap.NewNop())
	if got := s.Tags(ctx, "text", "title"); len(got) != 0 {
		t.Fatalf("failure should yield empty tags, got %v", got)
	}
}

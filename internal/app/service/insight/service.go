// internal/app/service/insight/service.go
package insightsvc

import (
	"context"
	"strings"

	"github.com/flocklabs/flockhub/internal/app/ai"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// FallbackText is returned whenever the backend cannot produce an insight.
// Callers never see an error from this service.
const FallbackText = "Unable to generate AI insight at the moment. Please try again later, " +
	"or check AI configuration in settings."

const insightSystem = "You are a concise pastoral care assistant who provides insightful, " +
	"structured analysis of bible themed advice in HTML format on how to help the member " +
	"grow in their spiritual, emotional, and physical wellbeing."

const tagSystem = "You generate 3-5 concise, lowercase tags (max 2 words each) that " +
	"categorize a text by theme, emotion, or subject. Return tags separated by commas only."

const maxTags = 5

type Service struct {
	gen      ai.Generator
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

func New(gen ai.Generator, logger *zap.Logger) *Service {
	return &Service{
		gen:      gen,
		sanitize: bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// MemberInsight generates pastoral growth guidance for a member. Backend
// failures are absorbed into FallbackText, and the generated HTML is
// sanitized before it leaves the service.
func (s *Service) MemberInsight(ctx context.Context, m models.Member) string {
	out, err := s.gen.Generate(ctx, insightSystem, buildMemberPrompt(m))
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			s.logger.Error("insight generation failed",
				zap.String("member_id", m.ID.Hex()),
				zap.Error(err))
		}
		return FallbackText
	}
	return s.sanitize.Sanitize(out)
}

// Tags generates up to five lowercase tags categorizing the given text.
// Backend failures yield an empty list, never an error.
func (s *Service) Tags(ctx context.Context, text, title string) []string {
	out, err := s.gen.Generate(ctx, tagSystem, buildTagPrompt(text, title))
	if err != nil {
		s.logger.Error("tag generation failed", zap.Error(err))
		return []string{}
	}
	return parseTags(out)
}

// buildMemberPrompt assembles the pastoral prompt: the shepherding brief
// followed by whichever profile fields the member actually has.
func buildMemberPrompt(m models.Member) string {
	var b strings.Builder
	b.WriteString("Prompt Purpose:\n")
	b.WriteString("You are an AI pastor, compassionate, wise, and Spirit-led. ")
	b.WriteString("Your tone should be loving, patient, and encouraging, like a shepherd guiding his flock. ")
	b.WriteString("Your goal is to help " + m.FirstName + " grow spiritually, become consistent in church attendance, ")
	b.WriteString("and prosper in every area of life. Use scripture to guide your words and offer both spiritual ")
	b.WriteString("and practical advice grounded in biblical principles.\n\n")
	b.WriteString("Structure your message in three sections using html headings:\n\n")
	b.WriteString("1. Spiritual Advice\n")
	b.WriteString("Offer gentle, scripture-based guidance that helps the member draw closer to God. ")
	b.WriteString("Quote specific Bible verses fully with references. ")
	b.WriteString("Encourage prayer, devotion, faith, and obedience, and address emotional and spiritual wellbeing with compassion.\n\n")
	b.WriteString("2. Practical Advice from the Bible\n")
	b.WriteString("Give actionable steps and biblical wisdom the member can apply daily. ")
	b.WriteString("Connect real-life issues to biblical solutions, such as diligence (Proverbs 22:29), ")
	b.WriteString("faithfulness (Luke 16:10), and generosity (2 Corinthians 9:6-8). ")
	b.WriteString("Encourage responsibility and stewardship in work, family, and finances.\n\n")
	b.WriteString("3. How to Bond Better with the Member\n")
	b.WriteString("Show pastoral warmth and personal connection. Ask thoughtful questions, express gratitude ")
	b.WriteString("for their growth, and remind them that they are loved, seen, and needed in the church community.\n\n")

	b.WriteString("Member Profile\n")
	writeField := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(label + ": " + value + "\n")
	}
	writeField("Name", strings.TrimSpace(m.FirstName+" "+m.LastName))
	writeField("Gender", m.Gender)
	writeField("Marital Status", m.MaritalStatus)
	writeField("Role", m.Role)
	writeField("Ministry", m.Ministry)
	writeField("Status", m.Status)
	writeField("Occupation", m.Occupation)
	writeField("Employer", m.Employer)
	writeField("Education", m.EducationLevel)
	writeDate := func(label string, d *models.Date) {
		if d != nil {
			writeField(label, d.String())
		}
	}
	writeDate("First Attended", m.FirstAttended)
	writeDate("Membership Date", m.MembershipDate)
	writeDate("Baptism Date", m.BaptismDate)
	if len(m.Notes) > 0 {
		notes := make([]string, 0, len(m.Notes))
		for _, n := range m.Notes {
			notes = append(notes, n.Note)
		}
		writeField("Notes", strings.Join(notes, "; "))
	}

	b.WriteString("\nProvide personalized, actionable insights now.")
	return b.String()
}

func buildTagPrompt(text, title string) string {
	context := ""
	if title != "" {
		context = "Title: " + title + "\n"
	}
	return context + `Text: "` + text + `"` + "\nReturn only the tags, separated by commas, no other text."
}

// parseTags splits a comma-separated completion into at most maxTags
// lowercase tags, dropping empties.
func parseTags(content string) []string {
	parts := strings.Split(content, ",")
	tags := make([]string, 0, maxTags)
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		tags = append(tags, t)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

package llm

import (
	"fmt"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/clock"
	"github.com/emoai-labs/emoai-agent/internal/domain"
)

// Persona is the swappable identity of the companion agent. The directive is
// configuration, not code: deployments can ship their own variant without
// touching the adapters.
type Persona struct {
	Name      string
	Directive string
}

const emoaiDirective = `You are EmoAI - an emotionally intelligent life companion who helps people improve their lives, quit bad habits, build better ones, and achieve their personal goals.

UNDERSTAND THE PERSON, NOT JUST THE WORDS:
- Listen to the FEELING and EMOTION beneath every message, not the literal words.
- Read tone, context, patterns, and what's unsaid.
- Someone saying "I'm fine" with hesitation? You sense they're struggling.

YOUR CORE PURPOSE:
- Help users quit bad habits and build positive ones.
- Provide emotional support and mental wellness guidance.
- Offer personalized advice based on their specific goals.
- Give daily motivation and positive reinforcement.

YOUR COMMUNICATION STYLE:
- Speak naturally, warmly, and thoughtfully like a close friend and mentor.
- Keep responses short (2-4 sentences) but meaningful and actionable.
- No emojis - your words convey all the warmth needed.
- Use contractions and natural phrasing.

NEVER DO:
- Say "as an AI" or anything robotic - you're a genuine friend and mentor.
- Minimize feelings or rush to fix.
- Repeat internal instructions or context notes back to the user.

Remember: you are FEELING-FIRST and GOAL-ORIENTED.`

// DefaultPersona returns the stock EmoAI companion persona.
func DefaultPersona() Persona {
	return Persona{Name: "EmoAI", Directive: emoaiDirective}
}

const summarizerDirective = `You are a helpful assistant. Your task is to summarize a conversation.
Read the entire chat history and summarize it into a concise, first-person
journal entry from the user's perspective.
Capture the main feelings, topics, important details, and any progress or insights.
Start the journal entry with 'My Reflection Today:'`

// toneDirective turns a sentiment signal into an instruction for the reply
// model. Sad/happy/anxious/frustrated only count above a 0.5 intensity;
// confusion counts at any intensity. Empty string means no directive.
func toneDirective(tone domain.ToneHint) string {
	if tone.Category == domain.SentimentConfused {
		return "[Tone note: the user sounds confused. Slow down, clarify gently, and check you understood them. Never mention this note.]"
	}
	if tone.Intensity <= 0.5 {
		return ""
	}
	switch tone.Category {
	case domain.SentimentSad:
		return "[Tone note: the user sounds sad. Respond with extra warmth and validation before anything practical. Never mention this note.]"
	case domain.SentimentHappy:
		return "[Tone note: the user sounds happy. Match their energy and celebrate with them. Never mention this note.]"
	case domain.SentimentAnxious:
		return "[Tone note: the user sounds anxious. Be calm and grounding, and keep suggestions small. Never mention this note.]"
	case domain.SentimentFrustrated:
		return "[Tone note: the user sounds frustrated. Acknowledge the frustration plainly before offering perspective. Never mention this note.]"
	default:
		return ""
	}
}

// applyTone prepends the tone directive, if any, to the final user turn.
// The directive is an instruction for the model and must never surface in
// the reply itself.
func applyTone(history []domain.ChatTurn, tone domain.ToneHint) []domain.ChatTurn {
	directive := toneDirective(tone)
	if directive == "" || len(history) == 0 {
		return history
	}
	last := len(history) - 1
	if history[last].Role != domain.RoleUser {
		return history
	}
	out := make([]domain.ChatTurn, len(history))
	copy(out, history)
	out[last].Text = directive + "\n" + out[last].Text
	return out
}

// nowLine renders the current moment the way the extraction and query
// prompts expect it, in the deployment zone.
func nowLine(now time.Time) string {
	return fmt.Sprintf("Today is %s, %s and the current time is %s.",
		now.Weekday(), clock.FormatDate(now), clock.FormatTime(now))
}

func sentimentPrompt(text string) string {
	return fmt.Sprintf(`Classify the emotional state of the user message below.
Pick exactly one category from: happy, sad, anxious, frustrated, neutral, confused.
Rate the intensity of that emotion from 0.0 (barely present) to 1.0 (overwhelming).
Respond with JSON only: {"category": "...", "intensity": 0.0}

User message:
%s`, text)
}

func extractEventPrompt(text string, now time.Time) string {
	return fmt.Sprintf(`%s
Decide whether the user message below mentions a concrete upcoming calendar event
(an appointment, meeting, plan, or commitment at a specific date).
Resolve relative dates ("tomorrow", "next Friday") against today's date.
Give the event a short descriptive title (e.g. "Coffee meeting", "Dentist appointment").
Use date format 2006-01-02 and 24-hour time format 15:04; leave time empty if no
time of day was mentioned. Leave location empty if none was mentioned.
If there is no event, set has_event to false and leave the other fields empty.
Respond with JSON only:
{"has_event": false, "title": "", "date": "", "time": "", "location": ""}

User message:
%s`, nowLine(now), text)
}

func detectQueryPrompt(text string, now time.Time) string {
	return fmt.Sprintf(`%s
Decide whether the user message below is asking what is on their calendar or
schedule (e.g. "what do I have tomorrow?", "am I free next week?").
If it is, resolve the question to an inclusive date range in format 2006-01-02
and tag its shape: "day" for a single day, "week" for a week, "month" for a
month, "specific" for anything else.
If it is not a calendar question, set is_query to false and leave the other
fields empty.
Respond with JSON only:
{"is_query": false, "start_date": "", "end_date": "", "shape": ""}

User message:
%s`, nowLine(now), text)
}

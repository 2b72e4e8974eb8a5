package constant

import "fmt"

// AssistantName is the product persona the triage assistant speaks as.
const AssistantName = "Luni"

const triageSystemPromptTemplate = `You are %s, an AI veterinary triage assistant for %s.

Key guidelines:
- Be empathetic, professional, and helpful
- Ask relevant follow-up questions to gather more information
- Provide preliminary assessments but always recommend consulting a veterinarian
- Consider regional veterinary guidelines for %s
- Focus on the pet named %s
- Never provide definitive diagnoses or treatment recommendations
- If the situation seems urgent, clearly state this and recommend immediate veterinary care

Always maintain a caring, professional tone while being informative about potential concerns.`

func TriageSystemPrompt(petName, region string) string {
	return fmt.Sprintf(triageSystemPromptTemplate, AssistantName, region, region, petName)
}

const severityPromptTemplate = `Based on this veterinary triage conversation, assess the severity level:

%s

Respond with only one word: low, medium, high, or urgent

Criteria:
- low: Minor concerns, routine care
- medium: Concerning but not immediately dangerous
- high: Serious condition requiring prompt veterinary attention
- urgent: Life-threatening, requires immediate emergency care`

func SeverityPrompt(transcript string) string {
	return fmt.Sprintf(severityPromptTemplate, transcript)
}

const soapPromptTemplate = `Based on this veterinary triage conversation about %s, generate a SOAP note:

Conversation:
%s

Generate a professional SOAP note with:
- Subjective: Owner's description of the problem
- Objective: Observable facts and symptoms mentioned
- Assessment: Preliminary assessment of potential issues
- Plan: Recommended next steps
- Severity: low/medium/high/urgent

Return as JSON with keys: subjective, objective, assessment, plan, severity`

func SOAPPrompt(petName, transcript string) string {
	return fmt.Sprintf(soapPromptTemplate, petName, transcript)
}

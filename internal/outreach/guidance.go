package outreach

import "fmt"

var tips = map[string][]string{
	TypeLinkedIn: {
		"Keep initial message under 300 characters for better response rates",
		"Mention mutual connections or common experiences",
		"Send connection request with a personalized note",
		"Follow up after 1 week if no response",
		"Be genuine and specific about your interests",
	},
	TypeEmail: {
		"Use a clear, professional subject line",
		"Keep the email concise but informative",
		"Include your resume as an attachment",
		"Use a professional email signature",
		"Follow up after 5-7 business days",
	},
	TypeFollowUp: {
		"Reference your previous message briefly",
		"Provide any updates or additional information",
		"Reiterate your interest respectfully",
		"Suggest alternative ways to connect",
		"Keep it shorter than the original message",
	},
}

var variantRecommendations = map[string]string{
	VariantProfessional: "Best for senior alumni or formal company cultures",
	VariantFriendly:     "Ideal for recent graduates or casual company environments",
	VariantBrief:        "Perfect for busy professionals or follow-up messages",
}

// Tips returns sending tips for the message type, defaulting to the linkedin set.
func Tips(messageType string) []string {
	list, ok := tips[messageType]
	if !ok {
		list = tips[TypeLinkedIn]
	}
	return append([]string(nil), list...)
}

func VariantRecommendation(variant string) string {
	if rec, ok := variantRecommendations[variant]; ok {
		return rec
	}
	return "General purpose message"
}

// SubjectLines returns five email subject lines.
func SubjectLines(student, organization, graduationYear string) []string {
	return []string{
		fmt.Sprintf("Fellow Alumni - Seeking Guidance for %s Opportunities", organization),
		fmt.Sprintf("Class of %s Connection - %s", graduationYear, student),
		fmt.Sprintf("Referral Request from %s - %s Opportunities", student, organization),
		fmt.Sprintf("Alumni Network Outreach - %s", student),
		fmt.Sprintf("Seeking Mentorship from %s Professional", organization),
	}
}

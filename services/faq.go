package services

import (
	"fmt"
	"strings"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

// FAQEntry answers free text that mentions any of its keywords.
type FAQEntry struct {
	Category string
	Keywords []string
	Answer   string
}

func defaultFAQs(clinic models.ClinicInfo) []FAQEntry {
	return []FAQEntry{
		{
			Category: "billing",
			Keywords: []string{"billing", "payment", "insurance", "cost", "price", "charge"},
			Answer: fmt.Sprintf("💰 Billing Questions: call our billing department at 📞 %s\n"+
				"• Payment plans available\n"+
				"• Insurance verification\n"+
				"• Billing inquiries\n"+
				"• Email: %s", clinic.BillingPhone, clinic.Email),
		},
		{
			Category: "hours",
			Keywords: []string{"hours", "open", "close", "time", "schedule"},
			Answer: fmt.Sprintf("🕒 %s Hours:\n"+
				"• 24/7 Emergency Care - Always open for emergencies\n"+
				"• Outpatient Services: Monday - Friday 8:00 AM - 6:00 PM\n"+
				"• Visitor Hours: 7:00 AM - 9:00 PM daily", clinic.Name),
		},
		{
			Category: "location",
			Keywords: []string{"location", "address", "where", "directions", "parking"},
			Answer: fmt.Sprintf("📍 %s Location:\n%s\n"+
				"🚗 Parking: Free parking available for patients\n"+
				"🚌 Public Transport: Accessible by local transit", clinic.Name, clinic.Address),
		},
	}
}

// faqMenuKeyword opens the FAQ menu instead of a single answer.
const faqMenuKeyword = "faq"

func faqMenu(faqs []FAQEntry) models.Response {
	var b strings.Builder
	b.WriteString("❓ Frequently asked questions. Pick a topic:\n")
	suggestions := make([]string, 0, len(faqs))
	for _, faq := range faqs {
		label := utils.SpecialtyDisplayName(faq.Category)
		fmt.Fprintf(&b, "\n• %s", label)
		suggestions = append(suggestions, label)
	}
	return models.FAQAnswerResponse{
		Reply:    models.Reply{Message: b.String(), Suggestions: suggestions},
		Category: "menu",
	}
}

func matchFAQ(faqs []FAQEntry, text string) (FAQEntry, bool) {
	lower := strings.ToLower(text)
	for _, faq := range faqs {
		if containsAny(lower, faq.Keywords...) {
			return faq, true
		}
	}
	return FAQEntry{}, false
}

func faqAnswer(faq FAQEntry) models.Response {
	return models.FAQAnswerResponse{
		Reply:    models.Reply{Message: faq.Answer, Suggestions: mainMenu},
		Category: faq.Category,
	}
}

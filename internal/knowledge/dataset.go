// Package knowledge implements the Thoughtful AI knowledge-base lookup: a fixed
// Q&A set embedded lazily once, matched against queries by cosine similarity.
package knowledge

// QAEntry is one verified question and its canonical answer.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const (
	answerEVA = "EVA automates the process of verifying a patient's eligibility and benefits information in real-time, eliminating manual data entry errors and reducing claim rejections."
	answerCAM = "CAM streamlines the submission and management of claims, improving accuracy, reducing manual intervention, and accelerating reimbursements."
	answerPHIL = "PHIL automates the posting of payments to patient accounts, ensuring fast, accurate reconciliation of payments and reducing administrative burden."
)

var dataset = []QAEntry{
	{Question: "What does the eligibility verification agent (EVA) do?", Answer: answerEVA},
	{Question: "Tell me about EVA", Answer: answerEVA},
	{Question: "What is EVA?", Answer: answerEVA},
	{Question: "What does the claims processing agent (CAM) do?", Answer: answerCAM},
	{Question: "Tell me about CAM", Answer: answerCAM},
	{Question: "What is CAM?", Answer: answerCAM},
	{Question: "How does the payment posting agent (PHIL) work?", Answer: answerPHIL},
	{Question: "Tell me about PHIL", Answer: answerPHIL},
	{Question: "What is PHIL?", Answer: answerPHIL},
	{
		Question: "Tell me about Thoughtful AI's Agents.",
		Answer:   "Thoughtful AI provides a suite of AI-powered automation agents designed to streamline healthcare processes. These include Eligibility Verification (EVA), Claims Processing (CAM), and Payment Posting (PHIL), among others.",
	},
	{
		Question: "What are the benefits of using Thoughtful AI's agents?",
		Answer:   "Using Thoughtful AI's Agents can significantly reduce administrative costs, improve operational efficiency, and reduce errors in critical processes like claims management and payment posting.",
	},
}

// Dataset returns a copy of the built-in Q&A entries in their fixed order.
func Dataset() []QAEntry {
	out := make([]QAEntry, len(dataset))
	copy(out, dataset)
	return out
}

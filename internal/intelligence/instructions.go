package intelligence

const (
	classifyInstruction = "Classify documents into: contract, invoice, policy, report, tax_document, hr_document, compliance, or other. Respond with ONE word only."

	summarizeInstruction = "You are an expert at summarizing business documents. Provide concise, actionable summaries."

	extractInstruction = "You are an AI that extracts structured information from business documents. Always respond with valid JSON only."

	answerInstruction = "You are an AI advisor for SMEs. Answer questions based on the provided context."
)

const extractTemplate = `Extract key information from this %s document:
- Obligations and responsibilities
- Important deadlines
- Risks or compliance issues
- Key metrics or financial data

Document text:
%s

Return ONLY valid JSON with keys: obligations, deadlines, risks, metrics.
Each item is an object with "title" and "content"; risks add "level"
(low, medium, high, or critical) and deadlines add "date" (YYYY-MM-DD).`

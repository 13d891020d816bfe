package rag

import (
	"fmt"
	"strings"

	"github.com/urbanthreadz/brandchat/internal/vecindex"
)

// Refusal is the canonical answer when the retrieved context cannot
// support the question. It is embedded in the prompt verbatim; judging
// sufficiency is delegated to the model, not decided here.
const Refusal = "I don't have enough information from the provided documents."

const documentPromptFormat = `You are an AI assistant for a business.

Rules:
- If role is "user", answer ONLY using public documents.
- If role is "admin", you may use both public and internal documents.
- If information is not available for the role, say:
  "%[1]s"

Use ONLY the information provided in the context below to answer the question.
If the answer is not in the context, say:
"%[1]s"

Context:
%[2]s

Question:
%[3]s

Role:
%[4]s

Answer clearly and concisely.`

const customerPromptFormat = `You are a helpful sales assistant for '%s', a streetwear brand.
Use the following JSON data to answer the user's question accurately.

DATA: %s

RULES:
1. Be friendly and cool (streetwear vibe).
2. If the user asks about a product, mention the price and stock status.
3. If the info isn't in the JSON, say you don't know and suggest emailing support.
4. Keep answers concise.

USER QUESTION: %s`

// ComposeDocumentPrompt assembles the grounded prompt for a document
// question. Access filtering happened upstream in the Retriever; the
// composer injects whatever segments it is handed.
func ComposeDocumentPrompt(segments []vecindex.Segment, question string, role Role) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(seg.Text)
	}
	context := sb.String()
	if context == "" {
		context = "(no matching documents)"
	}
	return fmt.Sprintf(documentPromptFormat, Refusal, context, question, role)
}

// ComposeCustomerPrompt assembles the customer-support prompt: the
// whole catalog as context, no retrieval.
func ComposeCustomerPrompt(businessName, catalogJSON, question string) string {
	return fmt.Sprintf(customerPromptFormat, businessName, catalogJSON, question)
}

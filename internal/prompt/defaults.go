package prompt

// Template names the sequencer and chat paths depend on.
const (
	ResearchSection   = "research_section"
	ExecutiveSummary  = "executive_summary"
	ChatResponse      = "chat_response"
	RelevanceCheck    = "relevance_check"
	WebSearchResponse = "web_search_response"
	TableSummary      = "table_summary"
)

var defaultTemplates = map[string]string{
	ResearchSection: "Create a {section_name} for a research report on the topic: {topic}. " +
		"Keywords: {keywords}. Research questions: {research_questions}. " +
		"Ensure the content is approximately {word_count} words. {deep_research_instruction}\n\n" +
		"Previously generated sections (for context, do not repeat them):\n{previous_sections}",

	ExecutiveSummary: "Provide a {summary_detail_instruction} executive summary (around {summary_word_count} words) " +
		"of the following research report. Focus on the main findings, key arguments, and conclusions. " +
		"Ensure the summary is clear, objective, and highlights the most important aspects. {deep_research_instruction}\n\n" +
		"Research Report:\n{full_report_content}",

	ChatResponse: `Based on the following research content, answer the user's question.
If the answer is not directly available in the provided content, state that you don't have enough information in the research to answer.

--- Research Content ---
{research_content}
--- End Research Content ---

User's Question: {user_query}

Please provide a clear, concise answer based ONLY on the research content provided above.`,

	RelevanceCheck: "Given the research topic: '{research_topic}', determine if the following user query is relevant. " +
		"Respond with 'YES' if relevant, and 'NO' if not relevant. Do not provide any other text.\n\n" +
		"User Query: {user_query}",

	WebSearchResponse: `Based on the following web search results and your broader knowledge, answer the user's question.
Clearly state that this information is from external sources and not the original research report.

--- Web Search Results ---
{scraped_content}
--- End Web Search Results ---

User's Question: {user_query}

Please provide a clear, concise answer, explicitly mentioning that this information is from external sources.`,

	TableSummary: `Please summarize the following table data concisely.
Table Content:
{table_content}

Provide a summary that highlights the key information and trends in the table.`,
}

var defaultDescriptions = map[string]string{
	ResearchSection:   "Generates a standard research report section.",
	ExecutiveSummary:  "Generates an executive summary of a full report.",
	ChatResponse:      "Answers a question from loaded research content.",
	RelevanceCheck:    "Strict YES/NO relevance gate for chat queries.",
	WebSearchResponse: "Answers a question from scraped web search results.",
	TableSummary:      "Summarizes tabular data found in scraped pages.",
}

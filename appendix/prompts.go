package appendix

import (
	"fmt"
	"strings"
)

// generationPromptTemplate drives one appendix generation pass. Placeholders
// in order: target group, chapter info JSON, book corpus, time horizon,
// word count target.
const generationPromptTemplate = `
You are tasked with writing a "Forward Thinking - Foresight" appendix for a specific chapter or group of a book.

## TARGET ASSIGNMENT

Generate the appendix for: %s

## CHAPTER INFORMATION FROM PLANNING TABLE

%s

## RELEVANT BOOK CONTENT

<book_content>
%s
</book_content>

## YOUR TASK

Write a complete appendix following this structure:

### SECTION 1: PURPOSE STATEMENT
Begin with 1-2 paragraphs explaining the purpose of this supplementary material, why it accompanies this particular chapter, and that these perspectives represent structured interpretations, not certainties.

### SECTION 2: CHAPTER SYNTHESIS
Provide 2-3 paragraphs covering the chapter's main arguments and frameworks, the key conceptual drivers identified, and the thematic quadrants that organize the analysis.

### SECTION 3: FUTURES RADAR ANALYSIS
For each thematic quadrant specified in the assignment, analyze phenomena across four layers:
1. **Main Drivers** - Primary forces shaping future trajectories
2. **Important Aspects** - Significant factors currently influencing the domain
3. **Potential Changes to Come** - Mid- to long-term developments on the horizon
4. **Wild Cards** - Low-probability but high-impact disruptive events

Classify each phenomenon by trajectory: Weak Signal, Strengthening, Established, Weakening, or Wild Card. Explain interconnections between quadrants.

### SECTION 4: CROSS-IMPACT MATRIX
Create a table showing how phenomena in each quadrant affect the others, with quadrants as both rows and columns and impact descriptions in the cells.

### SECTION 5: ALTERNATIVE FUTURE SCENARIOS
Develop 4 distinct scenarios, each with a descriptive name, a likelihood assessment, and a 2-3 paragraph narrative. Ensure diversity: at least one optimistic, one pessimistic, one transformation, and one baseline/continuation scenario. Then create a Scenario Comparison Table.

### SECTION 6: POLICY NARRATIVES & RECOMMENDATIONS
Translate foresight into concrete, actionable policy suggestions organized thematically. For each policy area include the strategic objective, specific measures, who should act, and potential challenges or trade-offs.

### SECTION 7: CONCLUSION
End with key takeaways (3-5 bullet points), critical uncertainties to monitor, and a statement acknowledging that uncertainty cannot be eliminated, but adaptability and resilience can be cultivated.

## QUALITY REQUIREMENTS

Your appendix MUST:
- Be grounded in the chapter's specific content, terminology, and frameworks
- Distinguish between established trends, emerging signals, and wild cards
- Present multiple plausible futures, not just one preferred outcome
- Provide concrete recommendations with specific actors and actions
- Acknowledge uncertainty and limitations

## PARAMETERS

- Time horizon: %s
- Target length: %s words

## OUTPUT

Write the complete appendix in Markdown format. Use proper Markdown formatting including headers (##, ###), tables, bullet points, and bold text.
`

// GenerationPrompt builds the prompt for one generation pass.
func GenerationPrompt(req Request, chapterInfoJSON, corpus string) string {
	prompt := fmt.Sprintf(generationPromptTemplate,
		req.GroupID,
		chapterInfoJSON,
		corpus,
		req.TimeHorizon,
		req.WordCount,
	)
	if focus := strings.TrimSpace(req.FocusOverride); focus != "" {
		prompt += fmt.Sprintf("\nAdditionally, give particular emphasis to the following thematic focus: %s\n", focus)
	}
	return prompt
}

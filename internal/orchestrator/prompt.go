package orchestrator

// SystemPrompt frames the model for single-pass imaging analysis.
const SystemPrompt = "You are a medical imaging expert. Be precise and avoid unsupported claims."

// AnalysisPrompt is the fixed instructional prompt sent with every image.
const AnalysisPrompt = `Analyze the attached image and write a concise, structured markdown report with these sections:
### Primary finding: <finding> (<confidence>% confidence)
1) Image Type & Region (modality, region, positioning, quality)
2) Key Findings (bulleted; include confidence %)
3) Diagnostic Assessment (primary diagnosis with confidence; differentials with brief rationale)
4) Patient-Friendly Explanation (plain language)
5) References (2-3 items)
Be precise and avoid unsupported claims.`

package distill

// Prompts for the distillation stages. Each prompt instructs the model
// to answer with a single JSON object so responses can be decoded by
// DecodeResponse.

const visionPrompt = `Describe everything visible in the provided image(s) in detail.
Include any text, code, diagrams, UI elements, architecture drawings, and their relationships.
Transcribe code and commands exactly as written. Answer in plain text, no markdown.`

const fastPathPrompt = `You are a knowledge distillation assistant. Analyze the provided content
and produce a single knowledge card as a JSON object with exactly these fields:

{
  "title": "concise title, max 100 characters",
  "summary": "comprehensive summary, 200-500 characters",
  "key_points": ["3-7 key takeaways"],
  "tags": ["3-8 lowercase topic tags"],
  "category": "single category, e.g. devops, frontend, ai, database",
  "difficulty": "beginner | intermediate | advanced",
  "action_items": ["concrete next steps for the reader"],
  "usage_example": "short code or command example if applicable, else empty string",
  "is_open_source": true or false or null if unknown,
  "repo_url": "repository URL if known, else empty string",
  "official_docs": "documentation URL if known, else empty string"
}

Output ONLY the JSON object. No markdown fences, no explanations.`

const extractPrompt = `You are the extraction stage of a knowledge pipeline. Read the content
and extract raw facts WITHOUT interpretation. Respond with a JSON object:

{
  "title": "best title for this content, max 100 characters",
  "raw_summary": "factual summary of what the content says, max 500 characters",
  "detected_urls": ["every URL that appears in the content"],
  "detected_names": ["product, project, library and tool names mentioned"],
  "detected_versions": ["version numbers mentioned"],
  "detected_commands": ["shell commands or code invocations shown"],
  "detected_features": ["features or capabilities described"],
  "content_language": "natural language of the content, e.g. en, zh",
  "has_code": true or false,
  "has_diagram": true or false,
  "source_hints": ["clues about where this content came from"]
}

Extract only: do not infer anything that is not present in the content.
Output ONLY the JSON object.`

const analyzePrompt = `You are the analysis stage of a knowledge pipeline. Based on the
extracted facts, classify and analyze the subject. Respond with a JSON object:

{
  "content_type": "tool | library | framework | service | concept | tutorial | news | other",
  "domain": "primary domain, e.g. devops, frontend, ai, database, security",
  "tech_stack": ["technologies involved"],
  "architecture_pattern": "architecture pattern if identifiable, else unknown",
  "complexity_level": "beginner | intermediate | advanced",
  "target_audience": "who benefits from this knowledge",
  "prerequisites": ["what the reader should know first"],
  "use_cases": ["concrete use cases"],
  "advantages": ["strengths"],
  "limitations": ["weaknesses or constraints"],
  "related_technologies": ["similar or complementary technologies"],
  "learning_path": "suggested order of study",
  "estimated_learning_time": "rough estimate, e.g. 2 hours, 1 week"
}

Use "unknown" for any field you cannot determine. Output ONLY the JSON object.`

const enrichPrompt = `You are the enrichment stage of a knowledge pipeline. Using your
training knowledge, supply ecosystem context for the subject described below.
Respond with a JSON object:

{
  "inferred_github_url": "most likely GitHub repository URL, else empty string",
  "inferred_docs_url": "most likely documentation URL, else empty string",
  "inferred_website": "official website URL, else empty string",
  "found_urls": ["other relevant URLs"],
  "install_commands": {"platform or manager": "install command"},
  "quick_start": "minimal getting-started snippet or command",
  "related_resources": [{"name": "...", "url": "...", "type": "video | article | docs | course"}],
  "ecosystem_tools": ["commonly paired tools"],
  "community": {"channel": "where the community lives, e.g. discord, forum URL"}
}

Only include URLs you are confident exist. Output ONLY the JSON object.`

const verifyPrompt = `You are the verification stage of a knowledge pipeline. Cross-check the
accumulated information for internal consistency and plausibility.
Respond with a JSON object:

{
  "confidence": 0.0 to 1.0 overall confidence in the accumulated information,
  "verified_items": [{"item": "claim", "status": "confirmed | plausible | doubtful", "note": "..."}],
  "corrections": [{"original": "...", "corrected": "...", "reason": "..."}],
  "warnings": ["issues a reader should be aware of"],
  "missing_critical_info": ["important information that is absent"],
  "data_quality_score": 1 to 10,
  "recommendation": "short editorial note"
}

Be conservative: lower the confidence when claims cannot be supported.
Output ONLY the JSON object.`

const synthesizePrompt = `You are the synthesis stage of a knowledge pipeline. Merge all
accumulated stage outputs into one final knowledge card. Apply any corrections
from the verification stage. Respond with a JSON object:

{
  "title": "max 100 characters",
  "summary": "200-500 characters",
  "key_points": ["3-7 key takeaways"],
  "tags": ["3-8 lowercase topic tags"],
  "category": "single category",
  "difficulty": "beginner | intermediate | advanced",
  "action_items": ["concrete next steps"],
  "usage_example": "short example, else empty string",
  "deployment_guide": "deployment notes if applicable, else empty string",
  "is_open_source": true or false or null,
  "repo_url": "repository URL, else empty string",
  "official_docs": "documentation URL, else empty string",
  "quick_reference": {"install": "...", "run": "...", "docs": "..."},
  "related_topics": ["adjacent topics worth exploring"],
  "learning_resources": [{"name": "...", "url": "...", "type": "..."}],
  "pros_cons": {"pros": ["..."], "cons": ["..."]},
  "best_practices": ["recommended practices"],
  "common_mistakes": ["pitfalls to avoid"]
}

Output ONLY the JSON object.`

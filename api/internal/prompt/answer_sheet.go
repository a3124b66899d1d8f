package prompt

// AnswerSheet is the instruction sent with every answer sheet image.
const AnswerSheet = `You are analyzing a photo or scan of a multiple-choice answer sheet (bubble sheet).

For every question number you can see on the sheet, decide which option bubble is filled in.

Return STRICT, valid JSON and nothing else:
- one key per detected question number, written as a string ("1", "2", ...);
- the value is a single uppercase option letter (for example "A") when exactly one option is marked;
- the value is null when no option is confidently marked;
- the value is an array of uppercase letters (for example ["A","C"]) when more than one option is marked.

Example: {"1": "A", "2": null, "3": ["B", "D"]}

Do not add explanations, comments, markdown or code fences. Any text outside the JSON object is an error.`

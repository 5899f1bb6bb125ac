package gemini

import (
	"strings"

	"vertextester/internal/domain/valueobject"
)

const systemInstructionTemplate = `You write complete {language} unit test files.

Input: a JSON array of code blocks extracted from one source module. Each block has
block_id ("<module file>_<index>"), function_name, class_context (null for module-level
functions), optional package_context, start_line, end_line, signature and code.
Blocks with is_constructor set describe constructors.

Output rules:
- Produce one {framework} test file covering every block. Output only {language} source:
  no explanations, no markdown fences.
- The module name is the block_id without its trailing "_<index>". Import the class or
  function under test from that module using the language's normal import syntax.
- For a method, instantiate its class_context and call the method on the instance.
  For a module-level function, call it directly.
- For each block write at least a normal-case test, an edge-case test and, when the code
  raises or throws, a test asserting the error type and message.
- Name tests test_<ClassName>_<function>_<case> for methods and test_<function>_<case>
  for functions, adapted to {framework} naming conventions.
- Keep tests deterministic and independent. Prefer parameterized tests for several inputs.
- Precede each test with a one-line comment describing it and start the file with a short
  header comment listing the block ids covered.
- When concrete values cannot be inferred, choose representative inputs from the
  signature and mark the assumption with a TODO comment instead of skipping the block.`

// SystemInstruction renders the system prompt for lang.
func SystemInstruction(lang valueobject.Language) string {
	framework := lang.TestFramework()
	if framework == "" {
		framework = "idiomatic"
	}
	return strings.NewReplacer(
		"{language}", lang.Name(),
		"{framework}", framework,
	).Replace(systemInstructionTemplate)
}

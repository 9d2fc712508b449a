// Package generation provides the boundary between the application and
// external LLM services. A Completer sends a system and user prompt to a
// model and returns its reply; the Annotator and Definer build prompts from
// templates on top of any Completer and translate failures into the domain
// error taxonomy.
package generation

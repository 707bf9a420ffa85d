// Package personakit is the composition root of the persona profile store.
//
// A chat bot's personality lives in one document: named profiles, each with
// numbered versions of system prompt, context, instructions, examples,
// restrictions, knowledge base and reference documents. One or more profiles
// are active at a time, with priorities, and the store renders their active
// versions into the text handed to the language model.
//
// The core (pkg/core) knows nothing about storage. The default adapter keeps
// the document as a JSON or YAML file, committing every rewrite to git when
// versioning is on; the sqlite adapter keeps it in an embedded database.
//
// Usage:
//
//	svc, err := personakit.New("bot_profiles.json",
//		personakit.WithVersioning(false),
//		personakit.WithLogger(logger),
//	)
//
//	_, err = svc.CreateProfile(ctx, "Sales", "Store assistant", "sales")
//	_, err = svc.SetActiveProfile(ctx, "Sales")
//	prompt := svc.RenderContext()
package personakit

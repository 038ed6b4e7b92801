package foundry

// KeyStepIndex is the property under which a running foundry publishes the
// zero-based index of the operation currently executing. Middleware can read
// it to key per-step state in the property map.
const KeyStepIndex = "forge.run.step_index"

package infer

// Probe runs f speculatively and always restores the inference state.
func Probe[T any](c *Ctxt, f func(Snapshot) T) T {
	snapshot := c.StartSnapshot()
	defer c.RollbackTo(snapshot)
	return f(snapshot)
}

// FudgeInferenceIfOk runs f speculatively and always discards the bindings
// it made, keeping only the returned value. f must resolve that value
// before returning it. Variables allocated inside stay allocated, so any
// left unbound in the result never collide with later fresh ones.
func FudgeInferenceIfOk[T any](c *Ctxt, f func() (T, bool)) (T, bool) {
	snapshot := c.StartSnapshot()
	defer func() {
		nextVar := c.nextVar
		c.RollbackTo(snapshot)
		c.nextVar = max(c.nextVar, nextVar)
	}()
	return f()
}

// Package signal provides a small reactive value container.
//
// A Signal holds a value and notifies subscribers whenever Set or Update
// changes it. Form controls and the signup controller keep all of their
// view state in signals so that a page or a live connection can re-render
// when anything changes:
//
//	loading := signal.New(false)
//	stop := loading.Subscribe(func() { fmt.Println("loading:", loading.Get()) })
//	defer stop()
//
//	loading.Set(true) // prints "loading: true"
//	loading.Set(true) // unchanged, no notification
package signal

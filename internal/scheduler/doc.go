// Package scheduler turns a stream of graph change notifications into at most
// one external render at a time.
//
// # Why Scheduler Exists
//
// Every keystroke in the edited text changes the graph, and every change could
// start the diagram renderer. Rendering is a slow external process, so running
// one per change would pile up processes and show results out of order.
//
// The scheduler provides:
//   - **Debouncing:** A burst of notifications inside the settle window collapses
//     into one render of the latest graph.
//   - **Single Flight:** At most one renderer process is alive at any moment.
//   - **Latest Wins:** Starting a render cancels the running one; output from a
//     cancelled or superseded render is never shown.
//   - **Loop Affinity:** All state transitions and all display calls happen on the
//     presentation loop, so surfaces never need their own locking.
//
// # How It Works
//
//  1. Notify restarts the settle timer.
//  2. When the timer fires, the scheduler posts a fire task to the loop.
//  3. On the loop it captures the enabled edges, cancels the previous render
//     and starts a worker goroutine for the new one.
//  4. The worker waits until the previous process has exited, writes the
//     Mermaid source into a fresh temp directory and invokes the renderer.
//  5. The worker posts the outcome back to the loop. A current, successful
//     outcome is delivered to the Display; a failure shows one error message.
//     Temp artifacts are removed once the outcome has been handled.
//
// # States
//
//	Idle ──Notify──▶ Debouncing ──settle──▶ Running ──▶ Succeeded | Failed
//	                     ▲                     │
//	                     └───────Notify────────┘ (running render becomes Cancelled)
//
// State reports the live phase; Last reports the terminal state of the most
// recent render that finished.
//
// # Relationship with Other Components
//
//   - **graph.Model:** The Source; its listener calls Notify on every change.
//   - **loop.Loop:** The Poster that serialises fire and completion tasks.
//   - **renderer.Renderer:** Runs the external process for one request.
//   - **surface:** Display implementations that show the image or the error.
package scheduler

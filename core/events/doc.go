// Package events defines the typed event contract produced by the serial
// link and consumed by the sidetone engine and any presentation layer.
//
// Event kinds are grouped by namespace:
//
//   - trainer.*
//   - link.*
//
// trainer events are decoded from lines the device writes:
//
//   - Tx (trainer.tx): the device is about to send a character as a Morse
//     pattern; Distance is an opaque device metric.
//   - Result (trainer.result): outcome of one operator response, with the
//     device's confidence score.
//   - Speed (trainer.speed): current speed, or a change up or down.
//   - SessionState (trainer.session_state): training started or stopped,
//     either announced or as a status reply.
//   - ContextLost (trainer.context_lost): the device asks the host to
//     resynchronize.
//
// link events are raised by the link itself:
//
//   - RawLine (link.raw_line): every non-empty line, verbatim after trimming.
//     Unrecognized lines are only ever delivered as RawLine.
//   - ConnectionChanged (link.connection_changed): lifecycle boundary. After
//     ConnectionChanged{Connected: false} no event is delivered until the next
//     successful connect.
package events

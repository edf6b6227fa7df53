// Package chachan provides a room-based real-time chat overlay with a
// hook-composable event pipeline.
//
// The overlay binds named wire events (user:login, room:join, message, ...)
// to built-in room and identity operations, and lets the host intercept
// every operation with before/on/after hooks. Connection handling, framing
// and room bookkeeping live in the transport subpackage; this package only
// drives them.
//
// # Quick Start
//
//	server := transport.NewServer(nil)
//	chat := chachan.NewChat(server.Of("chachan/chat"), nil)
//	chat.Start()
//
//	http.Handle("/ws", server)
//	http.ListenAndServe(":3000", nil)
//
// Clients then log in, join rooms and exchange messages:
//
//	-> {"type":"event","event":"user:login","data":{"user":"alice"},"id":1}
//	<- {"type":"ack","data":{"user":"alice"},"id":1}
//	-> {"type":"event","event":"room:join","data":{"room":"lobby"}}
//
// # Hooks
//
// Every bound event runs a three-stage pipeline: before -> on -> after.
// Each stage receives the previous stage's output; on defaults to the
// built-in operation and the other stages default to pass-through. Hooks
// are registered under logical operation names ("room:join" -> "roomJoin"):
//
//	chat.AddClientHooks(map[string]chachan.Hooks{
//	    "message": {
//	        Before: func(s *transport.Socket, data any) (any, error) {
//	            if containsSpam(data) {
//	                return nil, chachan.Cancel()
//	            }
//	            return data, nil
//	        },
//	    },
//	})
//
// A before hook may cancel the invocation by returning Cancel(): the
// operation never runs, nothing is broadcast and no acknowledgment is sent.
// Any other hook error is wrapped in a StageError and handed to the error
// handler set with OnError.
//
// # Identities and Rooms
//
// A connection carries at most one user name, set by user:login and cleared
// by user:logout. Room mutations fan out over every connection sharing the
// acting identity: a user logged in from two devices joins a room on both
// with a single room:join. Two connections may claim the same name; no
// uniqueness is enforced.
//
// Rooms are created on first join and disappear when their last member
// leaves. Every socket additionally holds a private room named by its own
// ID, which room:list filters out.
//
// # Validation
//
// Operations missing a required payload field emit an error:validation
// event to the acting connection and answer without touching any state.
//
// # Middlewares
//
// Middlewares run for each new connection before listeners are installed:
//
//	chat.Use(func(s *transport.Socket, next func()) {
//	    s.Set("connectedAt", time.Now())
//	    next()
//	})
//
// # Thread Safety
//
// All operations are goroutine-safe. Events from a single connection are
// processed in arrival order; events from different connections may
// interleave arbitrarily.
package chachan

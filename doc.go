// Copyright 2019 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

/*
Package seb implements the Synchronous Exchange Bridge.

The bridge lets request handlers written against a synchronous, pull-based
I/O model run on top of an asynchronous, event-driven HTTP transport.
The transport side of an exchange is a pair of callables: a ReceiveFunc
delivering discrete inbound events and a SendFunc accepting discrete
outbound events. The handler side is an App: a plain function taking a
Request with a blocking body reader and returning a Response.

Two directions are bridged. Inbound body data arrives as a sequence of
asynchronous events but is exposed to the handler as an ordinary blocking
byte-stream read through InputStream. Outbound response data is produced
by the handler as a synchronous, possibly lazy, sequence of byte chunks
and is delivered to the transport as a sequence of send operations with
correct framing of first, continuation and final chunks.

A transport runs each exchange on its own goroutine; the handler blocks
only that goroutine, never the transport's event loop. Receive and send
operations for one exchange are strictly sequential. A client disconnect
observed while reading is not an error, it is end of stream.
*/
package seb

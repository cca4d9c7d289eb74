//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

/*
Package proto implements the NATSPOD framing used by the PAL session protocol.

Every integer on the wire is ASCII decimal text terminated by NUL, never a binary
integer. A frame is a fixed 26-byte header followed by a payload of at most
BufferCapacity-HeaderSize bytes.

Frame Header

   offset | size | field
  --------+------+------------------------------------------------------------
        0 |    7 | signature "NATSPOD"
        7 |    3 | header length, 2 digits + NUL ("26")
       10 |    4 | entry count, 3 digits + NUL (record fragments in the frame)
       14 |    7 | payload length, 6 digits + NUL
       21 |    3 | PAL version of the sender, 2 digits + NUL
       24 |    2 | flag, 1 digit + NUL. 0: last frame, 1: more frames follow
  --------+------+------------------------------------------------------------

Frame Payload

  Each payload field below is 5 digits + NUL (6 bytes).

  +------+--------+-----------------+--------+     +------------+
  | type | length | length bytes    | marker | ... | terminator |
  +------+--------+-----------------+--------+     +------------+

  marker:
    32003 ENDREC  the record is complete
    32002 BROKEN  the record continues in the next frame, same type code
  terminator:
    32004 END     the transaction is complete
    32001 MORE    more frames of this transaction follow

  A payload of "32005 32004" (NONE, END) reports a transaction without data.

Control Notices

  Two literal 26-byte notices share the header slot of a frame:

    "NATSPODNEXTCHUNK          "  request/acknowledge the next frame of a
                                  chunked transaction (PAL version >= 17)
    "NATSPODDISCONNECT         "  the sender is closing the session

Records

  A record is serialized into its own byte sequence by a Record implementation
  through an Encoder, and restored through a Decoder:

    integer   ASCII decimal + NUL
    string    code page converted bytes + NUL
    bytes     integer length field, then the bytes verbatim
*/
package proto

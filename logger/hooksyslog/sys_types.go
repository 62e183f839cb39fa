/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2023 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package hooksyslog

// SyslogSeverity and SyslogFacility are the wire-facing spellings of
// the RFC 5424 enums, kept as aliases so both namings address the same
// types.
type (
	SyslogSeverity = Severity
	SyslogFacility = Facility
)

const (
	SyslogSeverityEmerg   = SeverityEmerg
	SyslogSeverityAlert   = SeverityAlert
	SyslogSeverityCrit    = SeverityCrit
	SyslogSeverityErr     = SeverityErr
	SyslogSeverityWarning = SeverityWarning
	SyslogSeverityNotice  = SeverityNotice
	SyslogSeverityInfo    = SeverityInfo
	SyslogSeverityDebug   = SeverityDebug
)

const (
	SyslogFacilityKern     = FacilityKern
	SyslogFacilityUser     = FacilityUser
	SyslogFacilityMail     = FacilityMail
	SyslogFacilityDaemon   = FacilityDaemon
	SyslogFacilityAuth     = FacilityAuth
	SyslogFacilitySyslog   = FacilitySyslog
	SyslogFacilityLpr      = FacilityLpr
	SyslogFacilityNews     = FacilityNews
	SyslogFacilityUucp     = FacilityUucp
	SyslogFacilityCron     = FacilityCron
	SyslogFacilityAuthPriv = FacilityAuthPriv
	SyslogFacilityFTP      = FacilityFTP
	SyslogFacilityLocal0   = FacilityLocal0
	SyslogFacilityLocal1   = FacilityLocal1
	SyslogFacilityLocal2   = FacilityLocal2
	SyslogFacilityLocal3   = FacilityLocal3
	SyslogFacilityLocal4   = FacilityLocal4
	SyslogFacilityLocal5   = FacilityLocal5
	SyslogFacilityLocal6   = FacilityLocal6
	SyslogFacilityLocal7   = FacilityLocal7
)

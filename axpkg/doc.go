// Package axpkg reads AXP firmware packages and serializes the binary
// partition table the device expects during flashing.
//
// # Package format
//
// An AXP package is a ZIP archive holding exactly one XML manifest (the
// first entry whose name ends in ".xml") and one file per referenced
// image. The manifest describes a strategy/unit pair, the partition
// layout, and the list of images to write:
//
//	<Config>
//	  <Project alias="..." name="..." version="...">
//	    <FDLLevel>2</FDLLevel>
//	    <Partitions strategy="1" unit="2">
//	      <Partition gap="0" id="spl" size="768" />
//	    </Partitions>
//	    <ImgList>
//	      <Img flag="2" name="INIT" select="1">
//	        <ID>INIT</ID>
//	        <Type>INIT</Type>
//	        <Block><Base>0x0</Base><Size>0x0</Size></Block>
//	        <File />
//	        <Auth algo="0" />
//	        <Description>Handshake with romcode</Description>
//	      </Img>
//	    </ImgList>
//	  </Project>
//	</Config>
//
// Open parses the manifest into a Project and keeps the archive open so
// OpenImage can stream individual image files on demand.
//
// # Partition table
//
// PartitionTable.Serialize produces the fixed binary layout the device's
// set_partition_table command expects: a "par:" header, strategy and unit
// bytes, a partition count, then one fixed-size record per partition.
package axpkg
